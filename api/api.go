package api

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/fullscopemd/storefront/api/middleware"
	"github.com/fullscopemd/storefront/api/web"
	"github.com/fullscopemd/storefront/cachegen"
	"github.com/fullscopemd/storefront/core/blog"
	"github.com/fullscopemd/storefront/core/cart"
	"github.com/fullscopemd/storefront/core/category"
	"github.com/fullscopemd/storefront/core/feedback"
	"github.com/fullscopemd/storefront/core/newsletter"
	"github.com/fullscopemd/storefront/core/product"
	"github.com/fullscopemd/storefront/core/seo"
	"github.com/fullscopemd/storefront/core/site"
	"github.com/fullscopemd/storefront/database"
	"github.com/fullscopemd/storefront/rate"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	DB         *sqlx.DB
	Session    *scs.SessionManager
	Gate       *cachegen.Gate
	Site       site.Config
	AdminToken string
	Limiter    *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID(middleware.DefaultRequestIDLengthLimit))
	a.mw = append(a.mw, middleware.Logger(cfg.Log, "/healthz"))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	admin := middleware.Admin(cfg.AdminToken)
	nocache := middleware.NoCache()
	limit := middleware.RateLimit(cfg.Limiter)

	crt := cart.New(cfg.Session, product.NewStore(cfg.DB))
	st := site.New(site.DBSource{DB: cfg.DB}, cfg.Gate, cfg.Site)

	a.Router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	a.Handle(http.MethodGet, "/healthz", handleHealth(cfg.DB))

	// Pages.
	a.Handle(http.MethodGet, "/", site.HandleHome(st))
	a.Handle(http.MethodGet, "/programs", site.HandlePrograms(st))
	a.Handle(http.MethodGet, "/programs/{slug}", site.HandleProgram(st))
	a.Handle(http.MethodGet, "/products/{slug}", site.HandleProduct(st))
	a.Handle(http.MethodGet, "/blog", site.HandleBlog(st))
	for _, p := range site.Pages {
		a.Handle(http.MethodGet, p.Path, site.HandleStatic(st))
	}

	// Cart.
	a.Handle(http.MethodGet, "/cart", site.HandleCart(st, crt), nocache)
	a.Handle(http.MethodDelete, "/cart", cart.HandleClear(crt), nocache)
	a.Handle(http.MethodGet, "/cart/summary", cart.HandleSummary(crt), nocache)
	a.Handle(http.MethodPost, "/cart/add", cart.HandleAdd(crt), nocache)
	a.Handle(http.MethodPost, "/cart/update", cart.HandleUpdate(crt), nocache)
	a.Handle(http.MethodPost, "/cart/remove", cart.HandleRemove(crt), nocache)

	// Newsletter.
	a.Handle(http.MethodPost, "/newsletter/subscribe", newsletter.HandleSubscribe(cfg.DB, cfg.Log), limit)
	a.Handle(http.MethodGet, "/newsletter/unsubscribe", newsletter.HandleUnsubscribe(cfg.DB), limit, nocache)

	// SEO.
	a.Handle(http.MethodGet, "/robots.txt", seo.HandleRobots(cfg.Site.BaseURL))
	a.Handle(http.MethodGet, "/sitemap.xml", seo.HandleSitemap(cfg.DB, cfg.Site.BaseURL, site.SitemapPaths()))

	// Admin.
	a.Handle(http.MethodGet, "/admin/categories/{id}", category.HandleShow(cfg.DB), admin)
	a.Handle(http.MethodPost, "/admin/categories", category.HandleCreate(cfg.DB, cfg.Gate), admin)
	a.Handle(http.MethodPut, "/admin/categories/{id}", category.HandleUpdate(cfg.DB, cfg.Gate), admin)
	a.Handle(http.MethodDelete, "/admin/categories/{id}", category.HandleDelete(cfg.DB, cfg.Gate), admin)
	a.Handle(http.MethodPost, "/admin/categories/{id}/bullets", category.HandleCreateBullet(cfg.DB, cfg.Gate), admin)
	a.Handle(http.MethodDelete, "/admin/categories/{id}/bullets/{bullet_id}", category.HandleDeleteBullet(cfg.DB, cfg.Gate), admin)

	a.Handle(http.MethodGet, "/admin/products/{id}", product.HandleShow(cfg.DB), admin)
	a.Handle(http.MethodPost, "/admin/products", product.HandleCreate(cfg.DB, cfg.Gate), admin)
	a.Handle(http.MethodPut, "/admin/products/{id}", product.HandleUpdate(cfg.DB, cfg.Gate), admin)
	a.Handle(http.MethodDelete, "/admin/products/{id}", product.HandleDelete(cfg.DB, cfg.Gate), admin)
	a.Handle(http.MethodPost, "/admin/products/{id}/images", product.HandleCreateImage(cfg.DB, cfg.Gate), admin)
	a.Handle(http.MethodPut, "/admin/products/{id}/images/{image_id}", product.HandleUpdateImage(cfg.DB, cfg.Gate), admin)
	a.Handle(http.MethodDelete, "/admin/products/{id}/images/{image_id}", product.HandleDeleteImage(cfg.DB, cfg.Gate), admin)

	a.Handle(http.MethodPost, "/admin/posts", blog.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/admin/posts/{id}", blog.HandleDelete(cfg.DB), admin)
	a.Handle(http.MethodPost, "/admin/feedbacks", feedback.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/admin/feedbacks/{id}", feedback.HandleDelete(cfg.DB), admin)

	a.Router.NotFoundHandler = a.wrap(site.HandleNotFound())

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	a.Router.Handle(path, a.wrap(handler)).Methods(method)
}

// wrap applies the global middleware and adapts handler to net/http.
func (a *api) wrap(handler web.Handler) http.Handler {

	handler = web.WrapMiddleware(a.mw, handler)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})
}

func handleHealth(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := database.StatusCheck(ctx, db); err != nil {
			return err
		}
		return web.Respond(ctx, w, map[string]string{"status": "ok"}, http.StatusOK)
	}
}
