package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/draftshare/internal/pkg/response"
	"github.com/xxxsen/draftshare/internal/service"
)

type ttlChoice struct {
	Days  int    `json:"days"`
	Label string `json:"label"`
}

type Properties struct {
	TTLChoices    []ttlChoice `json:"ttl_choices"`
	DefaultTTL    int         `json:"default_ttl"`
	ExpiredStatus int         `json:"expired_status"`
	AutoRevoke    bool        `json:"auto_revoke_on_publish"`
}

// PropertiesHandler tells the owner UI which link lifetimes it may offer.
type PropertiesHandler struct {
	properties Properties
}

func NewPropertiesHandler(expiredStatus int, autoRevoke bool) *PropertiesHandler {
	choices := make([]ttlChoice, 0, len(service.TTLChoices))
	for _, ttl := range service.TTLChoices {
		choices = append(choices, ttlChoice{Days: int(ttl), Label: ttlLabel(ttl)})
	}
	return &PropertiesHandler{properties: Properties{
		TTLChoices:    choices,
		DefaultTTL:    int(service.DefaultTTL),
		ExpiredStatus: expiredStatus,
		AutoRevoke:    autoRevoke,
	}}
}

func ttlLabel(ttl service.TTL) string {
	switch ttl {
	case 0:
		return "Never"
	case 1:
		return "1 day"
	}
	return strconv.Itoa(int(ttl)) + " days"
}

func (h *PropertiesHandler) Get(c *gin.Context) {
	response.Success(c, gin.H{"properties": h.properties})
}
