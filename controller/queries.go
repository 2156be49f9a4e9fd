package controller

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Query names one fixed read operation against a controller REST path.
type Query string

// Supported queries. Names follow the controller community convention; a few
// endpoints are known to 400/404 on some firmware lines and are passed
// through best-effort (see package documentation).
const (
	QueryListClients                Query = "list_clients" // alias of list_online_clients
	QueryListOnlineClients          Query = "list_online_clients"
	QueryListGuests                 Query = "list_guests"
	QueryListUsers                  Query = "list_users"
	QueryListUserGroups             Query = "list_user_groups"
	QueryStatAllUsers               Query = "stat_all_users"
	QueryStatAuthorizations         Query = "stat_authorizations"
	QueryStatSessions               Query = "stat_sessions"
	QueryListDevices                Query = "list_devices"
	QueryListWLANGroups             Query = "list_wlan_groups"
	QueryListRogueAccessPoints      Query = "list_rouge_access_points"
	QueryListKnownRogueAccessPoints Query = "list_known_rogue_access_points"
	QueryListTags                   Query = "list_tags"
	QueryFiveMinuteSiteStats        Query = "five_minute_site_stats"
	QueryHourlySiteStats            Query = "hourly_site_stats"
	QueryDailySiteStats             Query = "daily_site_stats"
	QueryAllSitesStats              Query = "all_sites_stats"
	QueryFiveMinuteAccessPointStats Query = "five_minute_access_point_stats"
	QueryHourlyAccessPointStats     Query = "hourly_access_point_stats"
	QueryDailyAccessPointStats      Query = "daily_access_point_stats"
	QueryFiveMinuteSiteDashboard    Query = "five_minute_site_dashboard_metrics"
	QueryHourlySiteDashboard        Query = "hourly_site_dashboard_metrics"
	QuerySiteHealthMetrics          Query = "site_health_metrics"
	QueryPortForwardingStats        Query = "port_forwarding_stats"
	QueryDPIStats                   Query = "dpi_stats"
	QueryStatVouchers               Query = "stat_vouchers"
	QueryStatPayments               Query = "stat_payments"
	QueryListHotspotOperators       Query = "list_hotspot_operators"
	QueryListSites                  Query = "list_sites"
	QuerySysinfo                    Query = "sysinfo"
	QueryListSiteSettings           Query = "list_site_settings"
	QueryListAdminsForCurrentSite   Query = "list_admins_for_current_site"
	QueryListAdminsForAllSites      Query = "list_admins_for_all_sites"
	QueryListWLANConfiguration      Query = "list_wlan_configuration"
	QueryListCurrentChannels        Query = "list_current_channels"
	QueryListVoIPExtensions         Query = "list_voip_extensions"
	QueryListNetworkConfiguration   Query = "list_network_configuration"
	QueryListPortConfiguration      Query = "list_port_configuration"
	QueryListPortForwardingRules    Query = "list_port_forwarding_rules"
	QueryListFirewallGroups         Query = "list_firewall_groups"
	QueryDynamicDNSConfiguration    Query = "dynamic_dns_configuration"
	QueryListCountryCodes           Query = "list_country_codes"
	QueryListAutoBackups            Query = "list_auto_backups"
	QueryListRadiusProfiles         Query = "list_radius_profiles"
	QueryListRadiusAccounts         Query = "list_radius_accounts"
	QueryListAlarms                 Query = "list_alarms"
	QueryListEvents                 Query = "list_events"
)

// QueryOptions carries the optional parameters some queries accept.
// Zero values mean "not set"; per-query defaults then apply.
type QueryOptions struct {
	// Since is a look-back window in hours (guests, all-users, rogue APs,
	// payments, events).
	Since int

	// StartEpoch and EndEpoch bound time-ranged queries. Units follow the
	// query: seconds for authorizations/sessions, milliseconds for the
	// report queries.
	StartEpoch int64
	EndEpoch   int64

	// CreatedTime filters vouchers by creation timestamp (seconds).
	CreatedTime int64

	// DeviceMAC narrows device and access-point queries to one device.
	DeviceMAC string

	// ClientMAC narrows client and session queries to one client.
	ClientMAC string

	// NetworkID narrows list_network_configuration to one network.
	NetworkID string

	// WLANID narrows list_wlan_configuration to one wireless network.
	WLANID string

	// StartNum and LimitNum page the events query.
	StartNum int
	LimitNum int
}

// cmdRequest is the body of the controller's POST cmd endpoints.
type cmdRequest struct {
	Cmd string `json:"cmd"`
}

// querySpec is the fixed descriptor of one query: HTTP method, path under
// /api/s/{site} (or an absolute path for siteless queries), and optional
// suffix/parameter/body builders.
type querySpec struct {
	method   string
	path     string
	siteless bool
	suffix   func(*QueryOptions) string
	params   func(*QueryOptions) url.Values
	body     func(*QueryOptions) any
}

// Default look-back windows, matching what controllers assume.
const (
	defaultWithinHours      = 8760 // one year, for guests and all-time users
	defaultRogueWithinHours = 24
	defaultEventWithinHours = 720
	defaultEventLimit       = 3000

	reportWindowSite = 12 * time.Hour
	reportWindowWeek = 7 * 24 * time.Hour
	reportWindowYear = 52 * 7 * 24 * time.Hour
	authWindow       = 7 * 24 * time.Hour
)

// Attribute sets requested from the report endpoints.
var (
	siteReportAttrs = []string{
		"bytes", "wan-tx_bytes", "wan-rx_bytes", "wlan_bytes",
		"num_sta", "lan-num_sta", "wlan-num_sta", "time",
	}
	apReportAttrs = []string{"bytes", "num_sta", "time"}
)

var queries = map[Query]querySpec{
	QueryListClients:       {method: http.MethodGet, path: "/stat/sta", suffix: clientMACSuffix},
	QueryListOnlineClients: {method: http.MethodGet, path: "/stat/sta", suffix: clientMACSuffix},
	QueryListGuests: {
		method: http.MethodGet, path: "/stat/guest",
		params: func(opts *QueryOptions) url.Values { return withinHours(opts.Since, defaultWithinHours) },
	},
	QueryListUsers:      {method: http.MethodGet, path: "/list/user"},
	QueryListUserGroups: {method: http.MethodGet, path: "/list/usergroup"},
	QueryStatAllUsers: {
		method: http.MethodGet, path: "/stat/alluser",
		params: func(opts *QueryOptions) url.Values {
			v := withinHours(opts.Since, defaultWithinHours)
			v.Set("type", "all")
			v.Set("conn", "all")
			return v
		},
	},
	QueryStatAuthorizations: {
		method: http.MethodGet, path: "/stat/authorization",
		params: func(opts *QueryOptions) url.Values { return epochWindowSeconds(opts, authWindow) },
	},
	QueryStatSessions: {
		method: http.MethodGet, path: "/stat/session",
		params: func(opts *QueryOptions) url.Values {
			v := epochWindowSeconds(opts, authWindow)
			v.Set("type", "all")
			if mac := strings.TrimSpace(opts.ClientMAC); mac != "" {
				v.Set("mac", mac)
			}
			return v
		},
	},
	QueryListDevices: {
		method: http.MethodGet, path: "/stat/device",
		suffix: func(opts *QueryOptions) string { return strings.TrimSpace(opts.DeviceMAC) },
	},
	QueryListWLANGroups: {method: http.MethodGet, path: "/list/wlangroup"},
	QueryListRogueAccessPoints: {
		method: http.MethodGet, path: "/stat/rogueap",
		params: func(opts *QueryOptions) url.Values { return withinHours(opts.Since, defaultRogueWithinHours) },
	},
	QueryListKnownRogueAccessPoints: {method: http.MethodGet, path: "/rest/rogueknown"},
	QueryListTags:                   {method: http.MethodGet, path: "/rest/tag"},
	QueryFiveMinuteSiteStats: {
		method: http.MethodGet, path: "/stat/report/5minutes.site",
		params: func(opts *QueryOptions) url.Values {
			return withAttrs(epochWindowMillis(opts, reportWindowSite), siteReportAttrs)
		},
	},
	QueryHourlySiteStats: {
		method: http.MethodGet, path: "/stat/report/hourly.site",
		params: func(opts *QueryOptions) url.Values {
			return withAttrs(epochWindowMillis(opts, reportWindowWeek), siteReportAttrs)
		},
	},
	QueryDailySiteStats: {
		method: http.MethodGet, path: "/stat/report/daily.site",
		params: func(opts *QueryOptions) url.Values {
			return withAttrs(epochWindowMillis(opts, reportWindowYear), siteReportAttrs)
		},
	},
	QueryAllSitesStats: {method: http.MethodGet, path: "/api/stat/sites", siteless: true},
	QueryFiveMinuteAccessPointStats: {
		method: http.MethodGet, path: "/stat/report/5minutes.ap",
		params: func(opts *QueryOptions) url.Values { return apReportParams(opts, reportWindowSite) },
	},
	QueryHourlyAccessPointStats: {
		method: http.MethodGet, path: "/stat/report/hourly.ap",
		params: func(opts *QueryOptions) url.Values { return apReportParams(opts, reportWindowWeek) },
	},
	QueryDailyAccessPointStats: {
		method: http.MethodGet, path: "/stat/report/daily.ap",
		params: func(opts *QueryOptions) url.Values { return apReportParams(opts, reportWindowWeek) },
	},
	QueryFiveMinuteSiteDashboard: {
		method: http.MethodGet, path: "/stat/dashboard",
		params: func(*QueryOptions) url.Values { return url.Values{"scale": []string{"5minutes"}} },
	},
	QueryHourlySiteDashboard: {method: http.MethodGet, path: "/stat/dashboard"},
	QuerySiteHealthMetrics:   {method: http.MethodGet, path: "/stat/health"},
	QueryPortForwardingStats: {method: http.MethodGet, path: "/stat/portforward"},
	QueryDPIStats:            {method: http.MethodGet, path: "/stat/dpi"},
	QueryStatVouchers: {
		method: http.MethodGet, path: "/stat/voucher",
		params: func(opts *QueryOptions) url.Values {
			v := url.Values{}
			if opts.CreatedTime != 0 {
				v.Set("created_time", strconv.FormatInt(opts.CreatedTime, 10))
			}
			return v
		},
	},
	QueryStatPayments: {
		method: http.MethodGet, path: "/stat/payment",
		params: func(opts *QueryOptions) url.Values {
			v := url.Values{}
			if opts.Since != 0 {
				v.Set("within", strconv.Itoa(opts.Since))
			}
			return v
		},
	},
	QueryListHotspotOperators: {method: http.MethodGet, path: "/rest/hotspotop"},
	QueryListSites:            {method: http.MethodGet, path: "/api/self/sites", siteless: true},
	QuerySysinfo:              {method: http.MethodGet, path: "/stat/sysinfo"},
	QueryListSiteSettings:     {method: http.MethodGet, path: "/get/setting"},
	QueryListAdminsForCurrentSite: {
		method: http.MethodPost, path: "/cmd/sitemgr",
		body: func(*QueryOptions) any { return cmdRequest{Cmd: "get-admins"} },
	},
	QueryListAdminsForAllSites: {method: http.MethodGet, path: "/api/stat/admin", siteless: true},
	QueryListWLANConfiguration: {
		method: http.MethodGet, path: "/rest/wlanconf",
		suffix: func(opts *QueryOptions) string { return strings.TrimSpace(opts.WLANID) },
	},
	QueryListCurrentChannels: {method: http.MethodGet, path: "/stat/current-channel"},
	QueryListVoIPExtensions:  {method: http.MethodGet, path: "/list/extension"},
	QueryListNetworkConfiguration: {
		method: http.MethodGet, path: "/rest/networkconf",
		suffix: func(opts *QueryOptions) string { return strings.TrimSpace(opts.NetworkID) },
	},
	QueryListPortConfiguration:   {method: http.MethodGet, path: "/list/portconf"},
	QueryListPortForwardingRules: {method: http.MethodGet, path: "/list/portforward"},
	QueryListFirewallGroups:      {method: http.MethodGet, path: "/rest/firewallgroup"},
	QueryDynamicDNSConfiguration: {method: http.MethodGet, path: "/list/dynamicdns"},
	QueryListCountryCodes:        {method: http.MethodGet, path: "/stat/ccode"},
	QueryListAutoBackups: {
		method: http.MethodPost, path: "/cmd/backup",
		body: func(*QueryOptions) any { return cmdRequest{Cmd: "list-backups"} },
	},
	QueryListRadiusProfiles: {method: http.MethodGet, path: "/rest/radiusprofile"},
	QueryListRadiusAccounts: {method: http.MethodGet, path: "/rest/account"},
	QueryListAlarms:         {method: http.MethodGet, path: "/list/alarm"},
	QueryListEvents: {
		method: http.MethodGet, path: "/stat/event",
		params: func(opts *QueryOptions) url.Values {
			v := withinHours(opts.Since, defaultEventWithinHours)
			v.Set("_sort", "-time")
			v.Set("_start", strconv.Itoa(opts.StartNum))
			limit := opts.LimitNum
			if limit == 0 {
				limit = defaultEventLimit
			}
			v.Set("_limit", strconv.Itoa(limit))
			return v
		},
	},
}

// SupportedQueries returns the names of all registered queries, sorted.
func SupportedQueries() []Query {
	names := make([]Query, 0, len(queries))
	for q := range queries {
		names = append(names, q)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func clientMACSuffix(opts *QueryOptions) string {
	return strings.TrimSpace(opts.ClientMAC)
}

func withinHours(since, def int) url.Values {
	if since == 0 {
		since = def
	}
	return url.Values{"within": []string{strconv.Itoa(since)}}
}

// epochWindowSeconds bounds a query to [start, end] in Unix seconds,
// defaulting to the window ending now.
func epochWindowSeconds(opts *QueryOptions, window time.Duration) url.Values {
	end := opts.EndEpoch
	if end == 0 {
		end = time.Now().Unix()
	}
	start := opts.StartEpoch
	if start == 0 {
		start = end - int64(window/time.Second)
	}

	v := url.Values{}
	v.Set("start", strconv.FormatInt(start, 10))
	v.Set("end", strconv.FormatInt(end, 10))
	return v
}

// epochWindowMillis is epochWindowSeconds in milliseconds, as the report
// endpoints expect.
func epochWindowMillis(opts *QueryOptions, window time.Duration) url.Values {
	end := opts.EndEpoch
	if end == 0 {
		end = time.Now().UnixMilli()
	}
	start := opts.StartEpoch
	if start == 0 {
		start = end - window.Milliseconds()
	}

	v := url.Values{}
	v.Set("start", strconv.FormatInt(start, 10))
	v.Set("end", strconv.FormatInt(end, 10))
	return v
}

func withAttrs(v url.Values, attrs []string) url.Values {
	v["attrs"] = attrs
	return v
}

func apReportParams(opts *QueryOptions, window time.Duration) url.Values {
	v := withAttrs(epochWindowMillis(opts, window), apReportAttrs)
	if mac := strings.TrimSpace(opts.DeviceMAC); mac != "" {
		v.Set("mac", mac)
	}
	return v
}
