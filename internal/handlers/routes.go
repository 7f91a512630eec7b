package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/heliohq/claims-portal/internal/domain"
	"github.com/heliohq/claims-portal/internal/http/response"
	"github.com/heliohq/claims-portal/pkg/config"
	"github.com/heliohq/claims-portal/pkg/middleware"
)

// Deps bundles everything the router needs.
type Deps struct {
	Config    *config.Config
	Guard     *Guard
	Auth      *AuthHandlers
	AdminAuth *AdminAuthHandlers
	Admin     *AdminHandlers
	Kyc       *KycHandlers
	Forms     *FormHandlers
	Crud      *CrudHandlers
}

// NewRouter assembles the full HTTP surface.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.Config.Auth.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	loginLimit := d.Guard.RateLimit("login", 10, 15*time.Minute)
	mailLimit := d.Guard.RateLimit("mail", 5, 15*time.Minute)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", d.Auth.Signup)
			r.With(loginLimit).Post("/login", d.Auth.Login)
			r.With(mailLimit).Post("/forgotPassword", d.Auth.ForgotPassword)
			r.Patch("/resetPassword", d.Auth.ResetPassword)
			r.Patch("/verifyUser", d.Auth.VerifyEmail)
			r.With(mailLimit).Post("/resendVerification", d.Auth.ResendVerification)
			r.Get("/logout", d.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(d.Guard.Authenticate)
				r.Use(RequireRoles(domain.RoleIndividual, domain.RoleVendor))
				r.Patch("/changePassword", d.Auth.UpdatePassword)
				r.Patch("/updateEmail", d.Auth.UpdateEmail)
				r.Get("/me", d.Auth.Me)
			})

			r.Route("/admin", func(r chi.Router) {
				r.With(loginLimit).Post("/login", d.AdminAuth.Login)
				r.With(mailLimit).Post("/forgotPassword", d.AdminAuth.ForgotPassword)
				r.Patch("/resetPassword", d.AdminAuth.ResetPassword)
				r.Get("/logout", d.AdminAuth.Logout)

				r.Group(func(r chi.Router) {
					r.Use(d.Guard.Authenticate)
					r.Use(RequireRoles(domain.RoleSuperAdmin, domain.RoleOperator))
					r.Patch("/changePassword", d.AdminAuth.UpdatePassword)
					r.Get("/me", d.AdminAuth.Me)
				})
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/signup", d.AdminAuth.Signup)

			r.Group(func(r chi.Router) {
				r.Use(d.Guard.Authenticate)

				r.Group(func(r chi.Router) {
					r.Use(RequireRoles(domain.RoleSuperAdmin, domain.RoleOperator))
					r.Get("/user/kyc/{id}", d.Admin.GetUserKyc)
					r.Get("/user/{id}", d.Admin.GetUser)
				})

				r.Group(func(r chi.Router) {
					r.Use(RequireRoles(domain.RoleSuperAdmin))
					r.Get("/user/list", d.Admin.ListUsers)
					r.Get("/superadmins/list", d.Admin.ListSuperAdmins)
					r.Get("/operators/list", d.Admin.ListOperators)
					r.Route("/admin/{id}", func(r chi.Router) {
						r.Get("/", d.Admin.GetAdmin)
						r.Patch("/", d.Admin.UpdateAdmin)
						r.Delete("/", d.Admin.DeleteAdmin)
					})
					d.Crud.MountAdminReferenceRoutes(r)
				})
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Use(d.Guard.Authenticate)
			d.Crud.MountEventRoutes(r, RequireRoles(domain.RoleSuperAdmin))
		})

		r.Route("/forms", func(r chi.Router) {
			r.Use(d.Guard.Authenticate)
			r.With(
				RequireRoles(domain.RoleIndividual, domain.RoleVendor),
				RequireKycComplete,
			).Post("/", d.Forms.Create)
			r.Get("/{id}", d.Forms.Get)
		})

		r.Route("/kyc", func(r chi.Router) {
			r.Use(d.Guard.Authenticate)
			r.With(RequireRoles(domain.RoleIndividual, domain.RoleVendor)).Post("/submitKyc", d.Kyc.Submit)
			r.With(RequireRoles(domain.RoleSuperAdmin)).Patch("/updateKyc/{id}", d.Kyc.Update)
		})
	})

	r.NotFound(response.NotFoundHandler)

	return r
}
