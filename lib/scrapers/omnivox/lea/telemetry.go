package lea

import (
	"ovxassist-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("ovxassist.lib.scrapers.omnivox.lea")
