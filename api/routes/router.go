package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pawfund/pawfund-backend/api/controllers"
	"github.com/pawfund/pawfund-backend/api/middleware"
	"github.com/pawfund/pawfund-backend/internal/adoptions"
	"github.com/pawfund/pawfund-backend/internal/auth"
	"github.com/pawfund/pawfund-backend/internal/cart"
	"github.com/pawfund/pawfund-backend/internal/donations"
	"github.com/pawfund/pawfund-backend/internal/events"
	"github.com/pawfund/pawfund-backend/internal/notifications"
	"github.com/pawfund/pawfund-backend/internal/pets"
	"github.com/pawfund/pawfund-backend/internal/screening"
	"github.com/pawfund/pawfund-backend/internal/users"
	"github.com/pawfund/pawfund-backend/pkg/auth/session"
	"github.com/pawfund/pawfund-backend/pkg/config"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	"github.com/pawfund/pawfund-backend/pkg/logger"
	"github.com/pawfund/pawfund-backend/pkg/metrics"
)

type sessionManager interface {
	session.AccessSessionChecker
	Revoke(context.Context, string) error
}

// Store is the Redis surface used by rate limiting and idempotency.
type Store interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(scope string) string
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// Services groups the domain services exposed over HTTP.
type Services struct {
	Auth          auth.Service
	Register      auth.RegisterService
	Sessions      sessionManager
	Users         users.Service
	Pets          pets.Service
	Screening     screening.Service
	Cart          cart.Service
	Adoptions     adoptions.Service
	Events        events.Service
	Donations     donations.Service
	Notifications notifications.Service
}

// Infra carries the shared plumbing. A nil Store disables rate limiting and
// idempotency; nil pingers are left out of readiness.
type Infra struct {
	Store    Store
	Pingers  map[string]controllers.Pinger
	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
		infra.Metrics.Middleware,
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	resendPolicy := middleware.NewAuthRateLimitPolicy(
		"resend",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	authn := middleware.Auth(cfg.JWT, svc.Sessions, logg)
	optional := middleware.OptionalAuth(cfg.JWT, svc.Sessions, logg)
	can := func(c enums.Capability) func(http.Handler) http.Handler {
		return middleware.RequireCapability(c, logg)
	}
	// idem replays by caller, so it sits after the auth middleware of each route.
	idem := middleware.Idempotency(infra.Store, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, infra.Pingers, logg))
	})
	if infra.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, infra.Store, logg)).Post("/register", controllers.AuthRegister(svc.Register, logg))
			r.Get("/verify", controllers.AuthVerify(svc.Register, logg))
			r.With(middleware.AuthRateLimit(resendPolicy, infra.Store, logg)).Post("/resend-verification", controllers.AuthResendVerification(svc.Register, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, infra.Store, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(svc.Auth, cfg.JWT, logg))
			r.Post("/logout", controllers.AuthLogout(svc.Sessions, cfg.JWT, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authn)
			r.Get("/me", controllers.CurrentUser(svc.Users, logg))
			r.Group(func(r chi.Router) {
				r.Use(can(enums.CapabilityManageUsers))
				r.Get("/", controllers.ListUsers(svc.Users, logg))
				r.Get("/{userId}", controllers.GetUser(svc.Users, logg))
				r.Put("/{userId}", controllers.UpdateUser(svc.Users, logg))
				r.Delete("/{userId}", controllers.DeleteUser(svc.Users, logg))
			})
		})

		r.Route("/pets", func(r chi.Router) {
			r.Get("/", controllers.ListPets(svc.Pets, logg))
			r.Get("/{petId}", controllers.GetPet(svc.Pets, logg))
			r.Group(func(r chi.Router) {
				r.Use(authn, can(enums.CapabilityManagePets))
				r.Post("/", controllers.CreatePet(svc.Pets, logg))
				r.Put("/{petId}", controllers.UpdatePet(svc.Pets, logg))
				r.Delete("/{petId}", controllers.DeletePet(svc.Pets, logg))
			})
		})

		r.Route("/adoption-test", func(r chi.Router) {
			r.Get("/questions", controllers.ScreeningQuestions(svc.Screening))
			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.With(can(enums.CapabilitySubmitScreening), idem).Post("/submit", controllers.SubmitScreening(svc.Screening, logg))
				r.Get("/latest", controllers.LatestScreeningScore(svc.Screening, logg))
				r.Get("/history", controllers.ScreeningHistory(svc.Screening, logg))
			})
		})

		r.Route("/guest-cart", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(optional)
				r.Get("/", controllers.GetCart(svc.Cart, logg))
				r.Post("/add", controllers.AddToCart(svc.Cart, logg))
				r.Post("/remove", controllers.RemoveFromCart(svc.Cart, logg))
			})
			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Get("/user-cart", controllers.UserCart(svc.Cart, logg))
				r.Post("/merge", controllers.MergeCart(svc.Cart, logg))
			})
		})

		r.Route("/adoptions", func(r chi.Router) {
			r.Use(authn)
			r.With(can(enums.CapabilityApplyAdoption), idem).Post("/", controllers.ApplyForAdoption(svc.Adoptions, logg))
			r.With(can(enums.CapabilityApplyAdoption), idem).Post("/from-cart", controllers.ApplyFromCart(svc.Adoptions, logg))
			r.Get("/", controllers.ListAdoptions(svc.Adoptions, logg))
			r.With(can(enums.CapabilityListAllAdoptions)).Get("/all", controllers.ListAllAdoptions(svc.Adoptions, logg))
			r.With(can(enums.CapabilityAdoptionStats)).Get("/stats", controllers.AdoptionStats(svc.Adoptions, logg))
			r.Get("/{adoptionId}", controllers.GetAdoption(svc.Adoptions, logg))
			r.Group(func(r chi.Router) {
				r.Use(can(enums.CapabilityReviewAdoption))
				r.Put("/{adoptionId}", controllers.UpdateAdoption(svc.Adoptions, logg))
				r.Put("/{adoptionId}/status", controllers.SetAdoptionStatus(svc.Adoptions, logg))
				r.Delete("/{adoptionId}", controllers.DeleteAdoption(svc.Adoptions, logg))
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.ListEvents(svc.Events, logg))
			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Group(func(r chi.Router) {
					r.Use(can(enums.CapabilityListEventMembers))
					r.Get("/shelters", controllers.EventCandidates(svc.Events, enums.RoleShelter, logg))
					r.Get("/volunteers", controllers.EventCandidates(svc.Events, enums.RoleVolunteer, logg))
					r.Get("/donors", controllers.EventCandidates(svc.Events, enums.RoleDonor, logg))
				})
				r.With(can(enums.CapabilityShelterEvents)).Get("/shelter-events", controllers.ShelterEvents(svc.Events, logg))
				r.With(can(enums.CapabilityVolunteerEvents)).Get("/volunteer-events", controllers.VolunteerEvents(svc.Events, logg))
				r.With(can(enums.CapabilityCreateEvent)).Post("/", controllers.CreateEvent(svc.Events, logg))
				r.With(can(enums.CapabilityEditEvent)).Put("/{eventId}", controllers.UpdateEvent(svc.Events, logg))
				r.With(can(enums.CapabilityEditEvent)).Delete("/{eventId}", controllers.DeleteEvent(svc.Events, logg))
			})
			r.Get("/{eventId}", controllers.GetEvent(svc.Events, logg))
		})

		r.Route("/collaborations", func(r chi.Router) {
			r.Use(authn, can(enums.CapabilityCollaborate))
			r.With(idem).Post("/invite/{eventId}/{inviteeId}", controllers.InviteCollaborator(svc.Events, logg))
			r.Put("/{requestId}/respond", controllers.RespondToCollaboration(svc.Events, logg))
			r.Get("/pending", controllers.PendingCollaborations(svc.Events, logg))
			r.Get("/sent", controllers.SentCollaborations(svc.Events, logg))
		})

		r.Route("/donations", func(r chi.Router) {
			r.Route("/paypal", func(r chi.Router) {
				r.Get("/client-id", controllers.PayPalClientConfig(svc.Donations))
				r.With(optional, idem).Post("/create-order", controllers.CreatePayPalOrder(svc.Donations, logg))
				r.With(optional, idem).Post("/capture/{orderId}", controllers.CapturePayPalOrder(svc.Donations, logg))
				r.Post("/verify", controllers.VerifyPayPal(svc.Donations, logg))
			})
			r.With(optional).Get("/success", controllers.PayPalSuccess(svc.Donations, logg))
			r.Get("/cancel", controllers.PayPalCancel())
			r.With(optional, idem).Post("/", controllers.CreateDonation(svc.Donations, logg))
			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.With(can(enums.CapabilityDonationStats)).Get("/statistics", controllers.DonationStatistics(svc.Donations, logg))
				r.Get("/", controllers.ListDonations(svc.Donations, logg))
				r.Get("/{donationId}", controllers.GetDonation(svc.Donations, logg))
				r.With(can(enums.CapabilityManageDonations)).Put("/{donationId}", controllers.UpdateDonation(svc.Donations, logg))
				r.With(can(enums.CapabilityManageDonations)).Delete("/{donationId}", controllers.DeleteDonation(svc.Donations, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", controllers.ListNotifications(svc.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svc.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svc.Notifications, logg))
		})
	})

	return r
}
