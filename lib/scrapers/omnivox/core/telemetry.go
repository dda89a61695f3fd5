package core

import (
	"ovxassist-backend/lib/restyutil"
	"ovxassist-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("ovxassist.lib.scrapers.omnivox.core")
var restyInstrumentOutput restyutil.InstrumentOutput

// call before NewClient, instrumentation is attached at client creation
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
