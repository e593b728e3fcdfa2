package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	adminapp "github.com/mangodeliveries/backend/internal/application/admin"
	"github.com/mangodeliveries/backend/internal/domain/admin"
	"github.com/mangodeliveries/backend/internal/domain/identity"
	"github.com/mangodeliveries/backend/internal/domain/shared"
	"github.com/mangodeliveries/backend/internal/interfaces/http/dto"
	"github.com/mangodeliveries/backend/internal/interfaces/http/middleware"
)

// AdminConsole exposes the director command surface
type AdminConsole interface {
	Dispatch(ctx context.Context, actor *identity.Character, directive admin.Directive) error
	Dashboard(ctx context.Context, actor *identity.Character) (*adminapp.Dashboard, error)
}

// DirectorHandler serves the director panel and its directive dispatch
type DirectorHandler struct {
	BaseHandler
	console AdminConsole
}

// NewDirectorHandler creates a DirectorHandler
func NewDirectorHandler(console AdminConsole) *DirectorHandler {
	return &DirectorHandler{console: console}
}

// RegisterRoutes registers the director routes
func (h *DirectorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/director", h.Dashboard)
	rg.POST("/director/submit", h.Submit)
}

// Dashboard returns the director panel data. Non-directors are bounced
// to the forbidden page rather than shown an alert.
func (h *DirectorHandler) Dashboard(c *gin.Context) {
	character := middleware.CharacterFrom(c)

	dashboard, err := h.console.Dashboard(c.Request.Context(), character)
	if err != nil {
		if shared.IsCode(err, "FORBIDDEN") || shared.IsCode(err, "AUTHENTICATION_REQUIRED") {
			c.Redirect(http.StatusFound, "/403")
			return
		}
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"character":           dto.NewCharacterView(character),
		"title":               "Director Panel - Mango Deliveries",
		"active":              "Director Panel",
		"bannedUsers":         bannedViews(dashboard.Banned),
		"freighters":          characterViews(dashboard.Freighters),
		"allowedCorporations": allowViews(dashboard.Corporations),
		"allowedAlliances":    allowViews(dashboard.Alliances),
		"bannedItemTypes":     itemViews(dashboard.ExcludedItems),
		"bannedMarketGroups":  groupViews(dashboard.ExcludedGroups),
		"destinations":        destinationViews(dashboard.Destinations),
		"settings":            gin.H{"maxVolume": dashboard.Settings.MaxVolume},
	})
}

// directiveRequest is the admin command body. Exactly one target field
// is expected; the action verb selects the variant.
type directiveRequest struct {
	Action      string `json:"action"`
	User        string `json:"user,omitempty"`
	Freighter   string `json:"freighter,omitempty"`
	Corporation string `json:"corporation,omitempty"`
	Alliance    string `json:"alliance,omitempty"`
	Item        *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"item,omitempty"`
	Group *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"group,omitempty"`
	Object    string  `json:"object,omitempty"`
	MaxVolume float64 `json:"maxVolume,omitempty"`
	Name      string  `json:"name,omitempty"`
	Image     string  `json:"image,omitempty"`
}

// Submit decodes one admin command into its directive and dispatches it
func (h *DirectorHandler) Submit(c *gin.Context) {
	var req directiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Alert(c, http.StatusBadRequest, "Malformed admin command.")
		return
	}

	directive, ok := buildDirective(req)
	if !ok {
		h.Alert(c, http.StatusBadRequest, "Unknown admin command")
		return
	}

	if err := h.console.Dispatch(c.Request.Context(), middleware.CharacterFrom(c), directive); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Alert(c, http.StatusOK, "Saved.")
}

// buildDirective selects the directive variant once, at the boundary.
// Everything past this point is an exhaustive switch on a closed set.
func buildDirective(req directiveRequest) (admin.Directive, bool) {
	switch {
	case req.User != "":
		switch req.Action {
		case "ban":
			return admin.BanCharacter{CharacterName: req.User}, true
		case "unban":
			return admin.UnbanCharacter{CharacterName: req.User}, true
		}
	case req.Freighter != "":
		switch req.Action {
		case "add":
			return admin.GrantFreighter{CharacterName: req.Freighter}, true
		case "remove":
			return admin.RevokeFreighter{CharacterName: req.Freighter}, true
		}
	case req.Corporation != "":
		switch req.Action {
		case "allow":
			return admin.AllowCorporation{CorporationName: req.Corporation}, true
		case "disallow":
			return admin.DisallowCorporation{CorporationName: req.Corporation}, true
		}
	case req.Alliance != "":
		switch req.Action {
		case "allow":
			return admin.AllowAlliance{AllianceName: req.Alliance}, true
		case "disallow":
			return admin.DisallowAlliance{AllianceName: req.Alliance}, true
		}
	case req.Item != nil:
		switch req.Action {
		case "exclude":
			return admin.ExcludeItemType{TypeID: req.Item.ID, Name: req.Item.Name}, true
		case "reinclude":
			return admin.ReincludeItemType{TypeID: req.Item.ID}, true
		}
	case req.Group != nil:
		switch req.Action {
		case "exclude":
			return admin.ExcludeMarketGroup{MarketGroupID: req.Group.ID, Name: req.Group.Name}, true
		case "reinclude":
			return admin.ReincludeMarketGroup{MarketGroupID: req.Group.ID}, true
		}
	case req.Object == "settings":
		return admin.UpdateSettings{MaxVolume: req.MaxVolume}, true
	case req.Object == "destination":
		switch req.Action {
		case "add":
			return admin.AddDestination{Name: req.Name, Image: req.Image}, true
		case "remove":
			return admin.RemoveDestination{Name: req.Name}, true
		}
	}
	return nil, false
}

func bannedViews(entries []identity.BanEntry) []gin.H {
	views := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		views = append(views, gin.H{"characterName": e.CharacterName})
	}
	return views
}

func characterViews(characters []identity.Character) []dto.CharacterView {
	views := make([]dto.CharacterView, 0, len(characters))
	for i := range characters {
		views = append(views, dto.NewCharacterView(&characters[i]))
	}
	return views
}

func allowViews(entries []identity.AllowEntry) []gin.H {
	views := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		views = append(views, gin.H{"name": e.SubjectName})
	}
	return views
}

func itemViews(items []admin.ExcludedItemType) []gin.H {
	views := make([]gin.H, 0, len(items))
	for _, i := range items {
		views = append(views, gin.H{"typeId": i.TypeID, "name": i.Name})
	}
	return views
}

func groupViews(groups []admin.ExcludedMarketGroup) []gin.H {
	views := make([]gin.H, 0, len(groups))
	for _, g := range groups {
		views = append(views, gin.H{"marketGroupId": g.MarketGroupID, "name": g.Name})
	}
	return views
}
