package router

import (
	"github.com/gin-gonic/gin"

	"github.com/worldref/backend/internal/interfaces/http/handler"
)

// Handlers bundles the HTTP handlers the route table wires up.
type Handlers struct {
	Auth     *handler.AuthHandler
	Member   *handler.MemberHandler
	Referral *handler.ReferralHandler
	Tracker  *handler.TrackerHandler
	Stats    *handler.StatsHandler
	System   *handler.SystemHandler
}

// AuthRoutes builds the identity resolution group. Resolve is public;
// the JWT middleware skips it by path. Extra middleware, such as the
// stricter auth rate limiter, applies to the whole group.
func AuthRoutes(h Handlers, mw ...gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("auth", "/auth")
	g.Use(mw...)
	g.POST("/resolve", h.Auth.Resolve)
	g.GET("/me", h.Auth.Me)
	return g
}

// MemberRoutes builds the referrer directory group.
func MemberRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("members", "/members")
	g.GET("", h.Member.List)
	g.GET("/:id", h.Member.Get)
	g.PUT("/:id/capacity", h.Member.SetCapacity)
	g.POST("/:id/activate", h.Member.Activate)
	g.POST("/:id/deactivate", h.Member.Deactivate)
	return g
}

// MeRoutes builds the group for the caller's own member record.
func MeRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("me", "/me")
	g.GET("", h.Member.MyMember)
	g.PUT("/referral-code", h.Member.SetReferralCode)
	g.GET("/stats", h.Stats.MyStats)
	return g
}

// ReferralRoutes builds the assignment lifecycle group. Assign and
// random are public entry points for anonymous visitors.
func ReferralRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("referrals", "/referrals")
	g.POST("/assign", h.Referral.Assign)
	g.GET("/random", h.Referral.Random)
	g.POST("/assignments/:id/complete", h.Referral.Complete)
	g.POST("/assignments/:id/fail", h.Referral.Fail)
	return g
}

// TrackingRoutes builds the click and visit tracking group.
func TrackingRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("tracking", "")
	g.POST("/visits", h.Tracker.RecordVisit)
	g.POST("/clicks/:id/convert", h.Tracker.Convert)
	return g
}

// StatsRoutes builds the statistics group.
func StatsRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("stats", "/stats")
	g.GET("", h.Stats.Global)
	return g
}

// SystemRoutes builds the system info group.
func SystemRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("system", "/system")
	g.GET("/info", h.System.GetSystemInfo)
	g.GET("/ping", h.System.Ping)
	return g
}

// ShortLinkRoutes builds the root-level short link group. GET follows
// the link and redirects; POST records a click without redirecting.
func ShortLinkRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("shortlink", "/r")
	g.GET("/:code", h.Tracker.Redirect)
	g.POST("/:code", h.Tracker.RecordClick)
	return g
}

// RegisterAll wires every domain group into the router. authMW applies
// to the auth group only.
func RegisterAll(r *Router, h Handlers, authMW ...gin.HandlerFunc) *Router {
	r.Register(AuthRoutes(h, authMW...)).
		Register(MemberRoutes(h)).
		Register(MeRoutes(h)).
		Register(ReferralRoutes(h)).
		Register(TrackingRoutes(h)).
		Register(StatsRoutes(h)).
		Register(SystemRoutes(h))
	r.RegisterRoot(ShortLinkRoutes(h))
	return r
}
