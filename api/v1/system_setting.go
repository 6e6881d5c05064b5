package v1

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/epustaka/epustaka/http/response"
	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/store"
)

func (h *Handler) setGeneralSettings(w http.ResponseWriter, r *http.Request) {
	var settings store.SystemGeneralSetting
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	if err := h.store.UpsertSystemGeneralSetting(&settings); err != nil {
		log.Error("Failed to set general settings", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, settings)
}
