package saft

import "github.com/spectriclabs/ndt-readers/internal/field"

// HeaderLength is the size of the ASCII header in front of the A-scans.
const HeaderLength = 2048

func text(name string, n int) field.Spec {
	return field.Spec{Name: name, Length: n, Kind: field.KindText}
}

func auto(name string, n int) field.Spec {
	return field.Spec{Name: name, Length: n, Kind: field.KindAuto}
}

func integer(name string, n int) field.Spec {
	return field.Spec{Name: name, Length: n, Kind: field.KindInt}
}

// Layout lists the header fields in file order. Each field starts where
// the previous one ends.
var Layout = []field.Spec{
	// general
	text("ascii", 10),
	auto("title", 81),
	auto("date", 9),
	auto("time", 9),

	// data; domain 0 = time, 1 = frequency; units 0 = inches
	integer("data_domain", 2),
	integer("data_nsets", 12),
	auto("data_min", 7),
	auto("data_max", 7),
	auto("data_avg", 17),
	integer("data_projection", 4),
	integer("data_units", 2),
	{Name: "data_16bit", Length: 7, Kind: field.KindBool},
	auto("data_scal_filename", 51),

	// probe; mode 0 = PE, 1 and 2 = TSAFT
	auto("probe_comment", 81),
	auto("probe_freq_mhz", 17),
	auto("probe_rxWedgePath_in", 17),
	auto("probe_txWedgePath_in", 17),
	auto("probe_rxWedgeVel_in/s", 17),
	auto("probe_txWedgeVel_in/s", 17),
	auto("probe_beamDia_in", 17),
	auto("probe_refracted_deg", 17),
	auto("probe_incident_deg", 17),
	auto("probe_skew_deg", 17),
	integer("probe_mode", 2),
	auto("probe_init_xoffset_in", 17),
	auto("probe_fnumber", 17),
	auto("probe_xoffset_wedge", 17),
	auto("probe_yoffset_wedge", 17),
	auto("probe_reserved", 13),

	// material; type 0 = unknown, 1 = plate, 2 = pipe, 3 = nozzle
	auto("mat_comment", 81),
	auto("mat_velocity_in/s", 17),
	auto("mat_refracted_deg", 17),
	auto("mat_thickness_in", 17),
	auto("mat_pipeDia_in", 17),
	auto("mat_trackDia_in", 17),
	integer("mat_type", 7),
	auto("mat_reserved", 23),

	// sampling
	auto("samp_comment", 81),
	auto("samp_delayinc_ns", 17),
	auto("samp_initdelay_ns", 17),
	integer("samp_ascan_length", 7),
	auto("samp_start_in", 17),
	auto("samp_stop_in", 17),
	integer("samp_averages", 7),
	auto("samp_pulsetime", 17),
	auto("samp_step_wavepath_in", 17),
	auto("samp_windowstart_ns", 11),
	auto("samp_windowstop_ns", 11),
	auto("samp_depthend_window", 1),

	// scan; "Y" downstream or toward the track
	auto("scan_comment", 81),
	auto("scan_dir_deg", 17),
	auto("scan_xstart_in", 17),
	auto("scan_ystart_in", 17),
	auto("scan_xstop_in", 17),
	auto("scan_ystop_in", 17),
	auto("scan_xstep_in", 17),
	auto("scan_ystep_in", 17),
	integer("scan_xpoints", 7),
	integer("scan_ypoints", 7),
	text("scan_isdownstream", 2),
	auto("scan_tx_half_vees", 12),
	auto("scan_rx_half_vees", 12),
	auto("scan_num_halfvees", 17),
	auto("scan_init_pos", 17),
	auto("scan_final_pos", 17),
	text("scan_toward_track", 2),
	auto("scan_scannertype", 4),
	auto("scan_pattern", 7),
	auto("scan_zincrement", 17),

	// hardware
	auto("processing", 308),
	auto("nozzle", 68),
	auto("other", 86),
	auto("TVG", 90),
	integer("digi_type", 7),
	integer("TVG_type", 7),
	integer("pulser_type", 7),
	{Name: "vpp", Length: 17, Kind: field.KindFloat},
	integer("sync_mode", 7),
	auto("other2", 179),
}
