package screening

// Question is one yes/no item of the adoption readiness quiz.
type Question struct {
	Number int    `json:"id"`
	Text   string `json:"question"`
}

var questions = [QuestionCount]Question{
	{1, "Bạn có đủ thời gian để chăm sóc thú cưng hàng ngày không?"},
	{2, "Bạn có thể để thú cưng ở nhà một mình trong 12 tiếng liên tục không?"},
	{3, "Bạn có sẵn sàng chi trả cho việc khám bệnh và tiêm chủng không?"},
	{4, "Bạn có không gian sống phù hợp cho thú cưng không?"},
	{5, "Bạn có thể từ bỏ việc đi du lịch để ở nhà với thú cưng không?"},
	{6, "Bạn có sẵn sàng dọn dẹp sau thú cưng không?"},
	{7, "Bạn có thể cho thú cưng ăn thức ăn rẻ tiền để tiết kiệm không?"},
	{8, "Bạn có thể cam kết chăm sóc thú cưng trong 10-15 năm không?"},
	{9, "Bạn có thể bỏ qua việc trang trí nhà để thú cưng thoải mái không?"},
	{10, "Bạn có sẵn sàng học cách chăm sóc thú cưng đúng cách không?"},
}
