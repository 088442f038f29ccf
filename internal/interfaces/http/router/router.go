package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rentledger/backend/internal/interfaces/http/dto"
	"github.com/rentledger/backend/internal/interfaces/http/middleware"
)

// APIPrefix is where every versioned resource is mounted
const APIPrefix = "/api/v1"

// ErrCodeRouteNotFound is returned for paths no route matches
const ErrCodeRouteNotFound = "ROUTE_NOT_FOUND"

// route is one endpoint of a resource, relative to its prefix
type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// resource is the set of routes served under one prefix, e.g. /tenants
type resource struct {
	prefix string
	routes []route
}

func newResource(prefix string) *resource {
	return &resource{prefix: prefix}
}

func (r *resource) add(method, path string, h gin.HandlerFunc) *resource {
	r.routes = append(r.routes, route{method: method, path: path, handler: h})
	return r
}

func (r *resource) get(path string, h gin.HandlerFunc) *resource {
	return r.add(http.MethodGet, path, h)
}

func (r *resource) post(path string, h gin.HandlerFunc) *resource {
	return r.add(http.MethodPost, path, h)
}

func (r *resource) put(path string, h gin.HandlerFunc) *resource {
	return r.add(http.MethodPut, path, h)
}

func (r *resource) delete(path string, h gin.HandlerFunc) *resource {
	return r.add(http.MethodDelete, path, h)
}

// mount registers every resource under the given group
func mount(api *gin.RouterGroup, resources ...*resource) {
	for _, res := range resources {
		group := api.Group(res.prefix)
		for _, rt := range res.routes {
			group.Handle(rt.method, rt.path, rt.handler)
		}
	}
}

// notFound answers unmatched paths with the standard error envelope
func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponse(ErrCodeRouteNotFound,
		"no route for "+c.Request.Method+" "+c.Request.URL.Path, middleware.GetRequestID(c)))
}
