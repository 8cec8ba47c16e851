package routes

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/saveconnectd/internal/http/mw"
)

// Register registers all API routes with the given Huma API instance.
// Pass real handler implementations for the main server, or stub implementations
// for OpenAPI generation.
func Register(api huma.API, h *Handlers) {
	// --- Health ---
	mw.Get(api, "/api/v1/health", h.HealthCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Health check"),
		mw.WithDescription("Returns service health status."),
		mw.WithOperationID("healthCheck"))

	mw.HiddenGet(api, "/healthz", h.HealthCheck)

	// --- Version ---
	mw.Get(api, "/api/v1/version", h.VersionCheck,
		mw.WithTags("Version"),
		mw.WithSummary("Daemon version"),
		mw.WithDescription("Returns the running daemon's version, commit, and build date."),
		mw.WithOperationID("getVersion"))

	// --- Accessories ---
	mw.Get(api, "/api/v1/accessories", h.Accessory.ListAccessories,
		mw.WithTags("Accessories"),
		mw.WithSummary("List accessories"),
		mw.WithDescription("Returns every registered SAVE CONNECT unit ordered by name."),
		mw.WithOperationID("listAccessories"))

	mw.Get(api, "/api/v1/accessories/{id}", h.Accessory.GetAccessory,
		mw.WithTags("Accessories"),
		mw.WithSummary("Get an accessory"),
		mw.WithOperationID("getAccessory"))

	mw.Delete(api, "/api/v1/accessories/{id}", h.Accessory.RemoveAccessory,
		mw.WithTags("Accessories"),
		mw.WithSummary("Remove an accessory"),
		mw.WithDescription("Stops polling the unit, unpublishes it from all hosts and drops it from the cache. It returns on the next discovery if still present."),
		mw.WithOperationID("removeAccessory"),
		mw.WithDefaultStatus(http.StatusNoContent))

	mw.Put(api, "/api/v1/accessories/{id}/switches/{switch}", h.Accessory.SetSwitch,
		mw.WithTags("Accessories"),
		mw.WithSummary("Set a boost switch"),
		mw.WithDescription("Turning a switch on writes its duration register and requests the mode. Turning it off requests auto. Device failures return 502 and leave the switch unchanged."),
		mw.WithOperationID("setSwitch"))

	mw.Post(api, "/api/v1/accessories/{id}/poll", h.Accessory.PollAccessory,
		mw.WithTags("Accessories"),
		mw.WithSummary("Poll now"),
		mw.WithDescription("Reads the active mode register immediately and applies the result to the switches."),
		mw.WithOperationID("pollAccessory"))

	// --- Logging ---
	mw.Get(api, "/api/v1/logging/level", h.Logging.GetLevel,
		mw.WithTags("Logging"),
		mw.WithSummary("Get global log level"),
		mw.WithOperationID("getLogLevel"))

	mw.Put(api, "/api/v1/logging/level", h.Logging.SetLevel,
		mw.WithTags("Logging"),
		mw.WithSummary("Set global log level"),
		mw.WithDescription("Changes the global log level at runtime. Valid values: debug, info, warn, error."),
		mw.WithOperationID("setLogLevel"))
}
