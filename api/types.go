package api

// Payload shapes of the /json views. Field names are the published
// contract consumed by dashboard aggregators.

type LinkItem struct {
	Callsign      string `json:"callsign"`
	IP            string `json:"ip"`
	LinkedModule  string `json:"linkedmodule"`
	Protocol      string `json:"protocol"`
	ConnectTime   string `json:"connecttime"`
	LastHeardTime string `json:"lastheardtime"`
}

type PeerItem struct {
	Callsign      string `json:"callsign"`
	IP            string `json:"ip"`
	LinkedModule  string `json:"linkedmodule"`
	ConnectTime   string `json:"connecttime"`
	LastHeardTime string `json:"lastheardtime"`
}

type CountryInfo struct {
	Country     string `json:"country"`
	CountryCode string `json:"countrycode"`
}

type StationItem struct {
	Callsign       string      `json:"callsign"`
	CallsignSuffix string      `json:"callsignsuffix"`
	ViaNode        string      `json:"vianode"`
	OnModule       string      `json:"onmodule"`
	LastHeard      string      `json:"lastheard"`
	Country        CountryInfo `json:"country"`
}

type StationsResponse struct {
	Stations []StationItem `json:"stations"`
}

type ModuleItem struct {
	Name      string   `json:"name"`
	Callsigns []string `json:"callsigns"`
}

type MetadataResponse struct {
	DashboardVersion  string `json:"dashboard_version"`
	IPv4              string `json:"ipV4"`
	IPv6              string `json:"ipV6"`
	ReflectorCallsign string `json:"reflector_callsign"`
	ReflectorVersion  string `json:"reflector_version"`
	SysopEmail        string `json:"sysop_email"`
}

// StatusResponse uses Unix epoch seconds for every time field.
type StatusResponse struct {
	LastUpdate             int64  `json:"lastupdate"`
	LastURFDUpdate         int64  `json:"lasturfdupdate"`
	ReflectorStatus        string `json:"reflectorstatus"`
	ReflectorUptimeSeconds int64  `json:"reflectoruptimeseconds"`
}

type ReflectorStation struct {
	Callsign      string `json:"callsign"`
	ViaNode       string `json:"vianode"`
	OnModule      string `json:"onmodule"`
	ViaPeer       string `json:"viapeer"`
	LastHeardTime string `json:"lastheardtime"`
}

type ReflectorDetail struct {
	FileTime string             `json:"filetime"`
	Callsign string             `json:"callsign"`
	Version  string             `json:"version"`
	Peers    []PeerItem         `json:"peers"`
	Nodes    []LinkItem         `json:"nodes"`
	Stations []ReflectorStation `json:"stations"`
}

type ReflectorResponse struct {
	LastUpdateCheckTime string          `json:"lastupdatechecktime"`
	Status              string          `json:"status"`
	Uptime              int64           `json:"uptime"`
	Data                ReflectorDetail `json:"data"`
}
