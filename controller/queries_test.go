package controller_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenmoini/go-unifi-facts/controller"
	"github.com/kenmoini/go-unifi-facts/internal/testutil"
)

// recordedRequest is what the recording controller saw last.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// newRecordingController answers every query path with an empty ok envelope
// and records the request for inspection.
func newRecordingController(t *testing.T, last *recordedRequest) *httptest.Server {
	t.Helper()

	login := testutil.LoginHandler(t, testCookie)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/login" {
			login(w, r)
			return
		}

		body, _ := io.ReadAll(r.Body)
		*last = recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Body:   body,
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testutil.EnvelopeOK("[]")))
	}))
}

func TestSupportedQueries(t *testing.T) {
	t.Parallel()

	names := controller.SupportedQueries()
	assert.Len(t, names, 47)
	assert.True(t, sort.SliceIsSorted(names, func(i, j int) bool { return names[i] < names[j] }))
	assert.Contains(t, names, controller.QueryListClients)
	assert.Contains(t, names, controller.QueryListOnlineClients)
	assert.Contains(t, names, controller.QueryListEvents)
}

func TestQueryRegistry(t *testing.T) {
	t.Parallel()

	var last recordedRequest
	server := newRecordingController(t, &last)
	defer server.Close()

	client := newTestClient(t, server.URL)

	ctx := context.Background()
	_, err := client.Login(ctx)
	require.NoError(t, err)

	tests := []struct {
		query  controller.Query
		method string
		path   string
	}{
		{controller.QueryListClients, http.MethodGet, "/api/s/default/stat/sta"},
		{controller.QueryListOnlineClients, http.MethodGet, "/api/s/default/stat/sta"},
		{controller.QueryListGuests, http.MethodGet, "/api/s/default/stat/guest"},
		{controller.QueryListUsers, http.MethodGet, "/api/s/default/list/user"},
		{controller.QueryListUserGroups, http.MethodGet, "/api/s/default/list/usergroup"},
		{controller.QueryStatAllUsers, http.MethodGet, "/api/s/default/stat/alluser"},
		{controller.QueryStatAuthorizations, http.MethodGet, "/api/s/default/stat/authorization"},
		{controller.QueryStatSessions, http.MethodGet, "/api/s/default/stat/session"},
		{controller.QueryListDevices, http.MethodGet, "/api/s/default/stat/device"},
		{controller.QueryListWLANGroups, http.MethodGet, "/api/s/default/list/wlangroup"},
		{controller.QueryListRogueAccessPoints, http.MethodGet, "/api/s/default/stat/rogueap"},
		{controller.QueryListKnownRogueAccessPoints, http.MethodGet, "/api/s/default/rest/rogueknown"},
		{controller.QueryListTags, http.MethodGet, "/api/s/default/rest/tag"},
		{controller.QueryFiveMinuteSiteStats, http.MethodGet, "/api/s/default/stat/report/5minutes.site"},
		{controller.QueryHourlySiteStats, http.MethodGet, "/api/s/default/stat/report/hourly.site"},
		{controller.QueryDailySiteStats, http.MethodGet, "/api/s/default/stat/report/daily.site"},
		{controller.QueryAllSitesStats, http.MethodGet, "/api/stat/sites"},
		{controller.QueryFiveMinuteAccessPointStats, http.MethodGet, "/api/s/default/stat/report/5minutes.ap"},
		{controller.QueryHourlyAccessPointStats, http.MethodGet, "/api/s/default/stat/report/hourly.ap"},
		{controller.QueryDailyAccessPointStats, http.MethodGet, "/api/s/default/stat/report/daily.ap"},
		{controller.QueryFiveMinuteSiteDashboard, http.MethodGet, "/api/s/default/stat/dashboard"},
		{controller.QueryHourlySiteDashboard, http.MethodGet, "/api/s/default/stat/dashboard"},
		{controller.QuerySiteHealthMetrics, http.MethodGet, "/api/s/default/stat/health"},
		{controller.QueryPortForwardingStats, http.MethodGet, "/api/s/default/stat/portforward"},
		{controller.QueryDPIStats, http.MethodGet, "/api/s/default/stat/dpi"},
		{controller.QueryStatVouchers, http.MethodGet, "/api/s/default/stat/voucher"},
		{controller.QueryStatPayments, http.MethodGet, "/api/s/default/stat/payment"},
		{controller.QueryListHotspotOperators, http.MethodGet, "/api/s/default/rest/hotspotop"},
		{controller.QueryListSites, http.MethodGet, "/api/self/sites"},
		{controller.QuerySysinfo, http.MethodGet, "/api/s/default/stat/sysinfo"},
		{controller.QueryListSiteSettings, http.MethodGet, "/api/s/default/get/setting"},
		{controller.QueryListAdminsForCurrentSite, http.MethodPost, "/api/s/default/cmd/sitemgr"},
		{controller.QueryListAdminsForAllSites, http.MethodGet, "/api/stat/admin"},
		{controller.QueryListWLANConfiguration, http.MethodGet, "/api/s/default/rest/wlanconf"},
		{controller.QueryListCurrentChannels, http.MethodGet, "/api/s/default/stat/current-channel"},
		{controller.QueryListVoIPExtensions, http.MethodGet, "/api/s/default/list/extension"},
		{controller.QueryListNetworkConfiguration, http.MethodGet, "/api/s/default/rest/networkconf"},
		{controller.QueryListPortConfiguration, http.MethodGet, "/api/s/default/list/portconf"},
		{controller.QueryListPortForwardingRules, http.MethodGet, "/api/s/default/list/portforward"},
		{controller.QueryListFirewallGroups, http.MethodGet, "/api/s/default/rest/firewallgroup"},
		{controller.QueryDynamicDNSConfiguration, http.MethodGet, "/api/s/default/list/dynamicdns"},
		{controller.QueryListCountryCodes, http.MethodGet, "/api/s/default/stat/ccode"},
		{controller.QueryListAutoBackups, http.MethodPost, "/api/s/default/cmd/backup"},
		{controller.QueryListRadiusProfiles, http.MethodGet, "/api/s/default/rest/radiusprofile"},
		{controller.QueryListRadiusAccounts, http.MethodGet, "/api/s/default/rest/account"},
		{controller.QueryListAlarms, http.MethodGet, "/api/s/default/list/alarm"},
		{controller.QueryListEvents, http.MethodGet, "/api/s/default/stat/event"},
	}

	require.Len(t, tests, len(controller.SupportedQueries()))

	for _, tt := range tests {
		t.Run(string(tt.query), func(t *testing.T) {
			_, err := client.Execute(ctx, tt.query, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.method, last.Method)
			assert.Equal(t, tt.path, last.Path)
		})
	}
}

func TestQuerySiteSelection(t *testing.T) {
	t.Parallel()

	var last recordedRequest
	server := newRecordingController(t, &last)
	defer server.Close()

	client, err := controller.NewWithConfig(&controller.ClientConfig{
		BaseURL:  server.URL,
		Username: testUsername,
		Password: testPassword,
		Site:     "branch1",
	})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = client.Login(ctx)
	require.NoError(t, err)

	_, err = client.Execute(ctx, controller.QueryListDevices, nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/s/branch1/stat/device", last.Path)

	// Siteless queries ignore the configured site.
	_, err = client.Execute(ctx, controller.QueryListSites, nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/self/sites", last.Path)
}

func TestQueryParameterDefaults(t *testing.T) {
	t.Parallel()

	var last recordedRequest
	server := newRecordingController(t, &last)
	defer server.Close()

	client := newTestClient(t, server.URL)

	ctx := context.Background()
	_, err := client.Login(ctx)
	require.NoError(t, err)

	t.Run("events", func(t *testing.T) {
		_, err := client.Execute(ctx, controller.QueryListEvents, nil)
		require.NoError(t, err)

		assert.Equal(t, "720", last.Query.Get("within"))
		assert.Equal(t, "-time", last.Query.Get("_sort"))
		assert.Equal(t, "0", last.Query.Get("_start"))
		assert.Equal(t, "3000", last.Query.Get("_limit"))
	})

	t.Run("events with paging", func(t *testing.T) {
		_, err := client.Execute(ctx, controller.QueryListEvents, &controller.QueryOptions{
			Since:    24,
			StartNum: 100,
			LimitNum: 50,
		})
		require.NoError(t, err)

		assert.Equal(t, "24", last.Query.Get("within"))
		assert.Equal(t, "100", last.Query.Get("_start"))
		assert.Equal(t, "50", last.Query.Get("_limit"))
	})

	t.Run("all users", func(t *testing.T) {
		_, err := client.Execute(ctx, controller.QueryStatAllUsers, nil)
		require.NoError(t, err)

		assert.Equal(t, "8760", last.Query.Get("within"))
		assert.Equal(t, "all", last.Query.Get("type"))
		assert.Equal(t, "all", last.Query.Get("conn"))
	})

	t.Run("rogue access points", func(t *testing.T) {
		_, err := client.Execute(ctx, controller.QueryListRogueAccessPoints, nil)
		require.NoError(t, err)

		assert.Equal(t, "24", last.Query.Get("within"))
	})

	t.Run("five minute dashboard scale", func(t *testing.T) {
		_, err := client.Execute(ctx, controller.QueryFiveMinuteSiteDashboard, nil)
		require.NoError(t, err)
		assert.Equal(t, "5minutes", last.Query.Get("scale"))

		_, err = client.Execute(ctx, controller.QueryHourlySiteDashboard, nil)
		require.NoError(t, err)
		assert.Empty(t, last.Query.Get("scale"))
	})

	t.Run("vouchers without filter", func(t *testing.T) {
		_, err := client.Execute(ctx, controller.QueryStatVouchers, nil)
		require.NoError(t, err)
		assert.NotContains(t, last.Query, "created_time")
	})

	t.Run("vouchers with created time", func(t *testing.T) {
		_, err := client.Execute(ctx, controller.QueryStatVouchers, &controller.QueryOptions{CreatedTime: 1700000000})
		require.NoError(t, err)
		assert.Equal(t, "1700000000", last.Query.Get("created_time"))
	})
}

func TestQueryTimeWindows(t *testing.T) {
	t.Parallel()

	var last recordedRequest
	server := newRecordingController(t, &last)
	defer server.Close()

	client := newTestClient(t, server.URL)

	ctx := context.Background()
	_, err := client.Login(ctx)
	require.NoError(t, err)

	t.Run("explicit epoch bounds", func(t *testing.T) {
		_, err := client.Execute(ctx, controller.QueryFiveMinuteSiteStats, &controller.QueryOptions{
			StartEpoch: 1700000000000,
			EndEpoch:   1700000043200,
		})
		require.NoError(t, err)

		assert.Equal(t, "1700000000000", last.Query.Get("start"))
		assert.Equal(t, "1700000043200", last.Query.Get("end"))
		assert.ElementsMatch(t, []string{
			"bytes", "wan-tx_bytes", "wan-rx_bytes", "wlan_bytes",
			"num_sta", "lan-num_sta", "wlan-num_sta", "time",
		}, last.Query["attrs"])
	})

	t.Run("authorizations default window", func(t *testing.T) {
		_, err := client.Execute(ctx, controller.QueryStatAuthorizations, nil)
		require.NoError(t, err)

		start, err := parseInt64(last.Query.Get("start"))
		require.NoError(t, err)
		end, err := parseInt64(last.Query.Get("end"))
		require.NoError(t, err)
		assert.Equal(t, int64(7*24*3600), end-start)
	})

	t.Run("access point report with mac", func(t *testing.T) {
		_, err := client.Execute(ctx, controller.QueryHourlyAccessPointStats, &controller.QueryOptions{
			DeviceMAC: "aa:bb:cc:dd:ee:ff",
		})
		require.NoError(t, err)

		assert.Equal(t, "aa:bb:cc:dd:ee:ff", last.Query.Get("mac"))
		assert.ElementsMatch(t, []string{"bytes", "num_sta", "time"}, last.Query["attrs"])
	})

	t.Run("sessions with client mac", func(t *testing.T) {
		_, err := client.Execute(ctx, controller.QueryStatSessions, &controller.QueryOptions{
			ClientMAC: "de:ad:be:ef:00:01",
		})
		require.NoError(t, err)

		assert.Equal(t, "/api/s/default/stat/session", last.Path)
		assert.Equal(t, "de:ad:be:ef:00:01", last.Query.Get("mac"))
		assert.Equal(t, "all", last.Query.Get("type"))
	})
}

func TestQueryPathSuffixes(t *testing.T) {
	t.Parallel()

	var last recordedRequest
	server := newRecordingController(t, &last)
	defer server.Close()

	client := newTestClient(t, server.URL)

	ctx := context.Background()
	_, err := client.Login(ctx)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query controller.Query
		opts  *controller.QueryOptions
		path  string
	}{
		{
			name:  "device by mac",
			query: controller.QueryListDevices,
			opts:  &controller.QueryOptions{DeviceMAC: "aa:bb:cc:dd:ee:ff"},
			path:  "/api/s/default/stat/device/aa:bb:cc:dd:ee:ff",
		},
		{
			name:  "client by mac",
			query: controller.QueryListOnlineClients,
			opts:  &controller.QueryOptions{ClientMAC: "de:ad:be:ef:00:01"},
			path:  "/api/s/default/stat/sta/de:ad:be:ef:00:01",
		},
		{
			name:  "wlan by id",
			query: controller.QueryListWLANConfiguration,
			opts:  &controller.QueryOptions{WLANID: "5c9f8e2a1b3d4f0011223344"},
			path:  "/api/s/default/rest/wlanconf/5c9f8e2a1b3d4f0011223344",
		},
		{
			name:  "network by id",
			query: controller.QueryListNetworkConfiguration,
			opts:  &controller.QueryOptions{NetworkID: "5c9f8e2a1b3d4f0011223355"},
			path:  "/api/s/default/rest/networkconf/5c9f8e2a1b3d4f0011223355",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Execute(ctx, tt.query, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.path, last.Path)
		})
	}
}

func TestCmdQueriesPostBody(t *testing.T) {
	t.Parallel()

	var last recordedRequest
	server := newRecordingController(t, &last)
	defer server.Close()

	client := newTestClient(t, server.URL)

	ctx := context.Background()
	_, err := client.Login(ctx)
	require.NoError(t, err)

	tests := []struct {
		query controller.Query
		cmd   string
	}{
		{controller.QueryListAdminsForCurrentSite, "get-admins"},
		{controller.QueryListAutoBackups, "list-backups"},
	}

	for _, tt := range tests {
		t.Run(string(tt.query), func(t *testing.T) {
			_, err := client.Execute(ctx, tt.query, nil)
			require.NoError(t, err)

			assert.Equal(t, http.MethodPost, last.Method)

			var body map[string]string
			require.NoError(t, json.Unmarshal(last.Body, &body))
			assert.Equal(t, tt.cmd, body["cmd"])
		})
	}
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
