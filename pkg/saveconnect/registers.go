package saveconnect

// Modbus register addresses as the SAVE CONNECT HTTP interface expects them.
// They are off by -1 from the SAVE Modbus variable list. Keep them as they are
// until the vendor confirms otherwise.
const (
	RegRefreshDuration  = 1103  // Duration of user mode "Refresh" in minutes
	RegCrowdedDuration  = 1104  // Duration of user mode "Crowded" in hours
	RegActiveUserMode   = 1160  // Currently active user mode
	RegUserModeRequest  = 1161  // Activation of the requested user mode
	RegManualAirflowSAF = 1130  // Supply air fan level for user mode "Manual"
	RegTemperatureSetSP = 2000  // User temperature set point (deci-degrees)
	RegEcoMode          = 2504  // ECO mode on/off
	RegUnknown16101     = 16100 // Written by the vendor app alongside mode requests
)

// Fixed values written together with a user mode request
const (
	RefreshDurationMinutes = 5
	CrowdedDurationHours   = 1
	TemperatureSetPoint    = 180
)

// Codes written to RegUserModeRequest
const (
	RequestAuto    = 1
	RequestCrowded = 3
	RequestRefresh = 4
)

// Codes reported by RegActiveUserMode
const (
	ActiveCrowded = 2
	ActiveRefresh = 3
)
