package lecroy

import "github.com/spectriclabs/ndt-readers/internal/field"

const (
	// Marker is the descriptor block name that anchors every offset.
	Marker = "WAVEDESC"
	// markerWindow is how far into the file the marker is searched for.
	// Files saved over a remote interface carry a short "#9..." prefix.
	markerWindow = 50

	// TestedTemplate is the only template revision the table below has
	// been checked against. Other revisions keep these fields at the same
	// offsets in practice, but nothing guarantees it.
	TestedTemplate = "LECROY_2_3"

	offTemplateName = 16
	offCommOrder    = 34
	descriptorLen   = 346
)

var (
	Coupling = []string{"DC_50ohms", "Ground", "DC_10Mohm", "Ground", "AC_1Mohm"}

	RecordType = []string{
		"single_sweep",
		"interleaved",
		"histogram",
		"graph",
		"filter_coefficient",
		"complex",
		"extrema",
		"sequence_obsolete",
		"centered_RIS",
		"peak_detect",
	}

	Processing = []string{
		"no_processing",
		"fir_filter",
		"interpolated",
		"sparsed",
		"autoscaled",
		"no_result",
		"rolling",
		"cumulative",
	}
)

// Template is the WAVEDESC layout, offsets relative to the marker.
var Template = []field.Spec{
	{Name: "descriptor_name", Offset: 0, Length: 16, Kind: field.KindText},
	{Name: "template_name", Offset: offTemplateName, Length: 16, Kind: field.KindText},
	{Name: "comm_type", Offset: 32, Length: 2, Kind: field.KindInt},
	{Name: "comm_order", Offset: offCommOrder, Length: 2, Kind: field.KindInt},
	{Name: "wave_descriptor", Offset: 36, Length: 4, Kind: field.KindInt},
	{Name: "user_text", Offset: 40, Length: 4, Kind: field.KindInt},
	{Name: "res_desc1", Offset: 44, Length: 4, Kind: field.KindInt},
	{Name: "trigtime_array", Offset: 48, Length: 4, Kind: field.KindInt},
	{Name: "ris_time_array", Offset: 52, Length: 4, Kind: field.KindInt},
	{Name: "res_array1", Offset: 56, Length: 4, Kind: field.KindInt},
	{Name: "wave_array_1", Offset: 60, Length: 4, Kind: field.KindInt},
	{Name: "wave_array_2", Offset: 64, Length: 4, Kind: field.KindInt},
	{Name: "instrument_name", Offset: 76, Length: 16, Kind: field.KindText},
	{Name: "instrument_number", Offset: 92, Length: 4, Kind: field.KindInt},
	{Name: "trace_label", Offset: 96, Length: 16, Kind: field.KindText},
	{Name: "wave_array_count", Offset: 116, Length: 4, Kind: field.KindInt},
	{Name: "subarray_count", Offset: 144, Length: 4, Kind: field.KindInt},
	{Name: "vertical_gain", Offset: 156, Length: 4, Kind: field.KindFloat},
	{Name: "vertical_offset", Offset: 160, Length: 4, Kind: field.KindFloat},
	{Name: "nominal_bits", Offset: 172, Length: 2, Kind: field.KindInt},
	{Name: "horiz_interval", Offset: 176, Length: 4, Kind: field.KindFloat},
	{Name: "horiz_offset", Offset: 180, Length: 8, Kind: field.KindFloat},
	{Name: "vertunit", Offset: 196, Length: 48, Kind: field.KindText},
	{Name: "horunit", Offset: 244, Length: 48, Kind: field.KindText},
	{Name: "trigger_time", Offset: 296, Length: field.TimestampLength, Kind: field.KindTimestamp},
	{Name: "record_type", Offset: 316, Length: 2, Kind: field.KindEnum, Enum: RecordType},
	{Name: "processing_done", Offset: 318, Length: 2, Kind: field.KindEnum, Enum: Processing},
	{Name: "timebase", Offset: 324, Length: 2, Kind: field.KindInt},
	{Name: "vert_coupling", Offset: 326, Length: 2, Kind: field.KindEnum, Enum: Coupling},
	{Name: "probe_att", Offset: 328, Length: 4, Kind: field.KindFloat},
	{Name: "fixed_vert_gain", Offset: 332, Length: 2, Kind: field.KindInt},
	{Name: "bandwidth_limit", Offset: 334, Length: 2, Kind: field.KindBool},
	{Name: "wave_source", Offset: 344, Length: 2, Kind: field.KindInt},
}
