package modules

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/cohesia-portal/internal/domain/entity"
	handlers "github.com/oksasatya/cohesia-portal/internal/interface/http"
	"github.com/oksasatya/cohesia-portal/internal/interface/middleware"
)

// PageGate binds a page to the only role allowed to see it.
type PageGate struct {
	Path string
	File string
	Role entity.Role
}

// ProtectedPages is the ordered gate list. Each entry is registered as a
// guarded route, and its file name is refused by the static fallback.
var ProtectedPages = []PageGate{
	{Path: "/emp_dashboard.html", File: "emp_dashboard.html", Role: entity.RoleEmployee},
	{Path: "/hr_dashboard.html", File: "hr_dashboard.html", Role: entity.RoleHR},
}

// PageModule serves the landing page, the gated dashboards and, as the
// fallback, every other static file.
type PageModule struct {
	Handler   *handlers.PageHandler
	LoginPage string
	Gates     []PageGate
	// Extra base names the static fallback must never serve.
	Hidden []string
}

func NewPageModule(h *handlers.PageHandler, loginPage string, hidden ...string) *PageModule {
	return &PageModule{Handler: h, LoginPage: loginPage, Gates: ProtectedPages, Hidden: hidden}
}

var pageMethods = []string{http.MethodGet, http.MethodHead}

func (m *PageModule) Register(rg *gin.RouterGroup) {
	rg.Match(pageMethods, "/", m.Handler.File("index.html"))
	for _, g := range m.Gates {
		rg.Match(pageMethods, g.Path, middleware.RequireRole(g.Role, m.LoginPage), m.Handler.File(g.File))
	}
}

func (m *PageModule) Fallback() []gin.HandlerFunc {
	return []gin.HandlerFunc{middleware.Static(m.Handler.Root, m.DeniedFiles()...)}
}

// DeniedFiles lists every base name the static fallback refuses.
func (m *PageModule) DeniedFiles() []string {
	out := make([]string, 0, len(m.Gates)+len(m.Hidden))
	for _, g := range m.Gates {
		out = append(out, path.Base(g.File))
	}
	for _, h := range m.Hidden {
		out = append(out, path.Base(h))
	}
	return out
}
