package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tripplanner/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentParsesPayload(t *testing.T) {
	var gotQ string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(`{"weather":[{"main":"Rain","description":"heavy intensity rain"}],"main":{"temp":12.5},"wind":{"speed":4},"rain":{"1h":12.4},"dt":1700000000}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key", time.Second)
	cond, err := c.Current(context.Background(), "Gilgit")
	require.NoError(t, err)
	assert.Equal(t, "Gilgit,PK", gotQ)
	assert.Equal(t, "Rain", cond.Main)
	assert.InDelta(t, 12.4, cond.Rain1hMM, 0.001)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), cond.Observed)
}

func TestCurrentErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("appid") == "bad" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "bad", time.Second).Current(context.Background(), "Skardu")
	var se StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)

	_, err = New(srv.URL, "key", time.Second).Current(context.Background(), "Skardu")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = New(srv.URL, "", time.Second).Current(context.Background(), "Skardu")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSignals(t *testing.T) {
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		cond Conditions
		want map[domain.HazardType]domain.Severity
	}{
		{"clear", Conditions{City: "Lahore", Main: "Clear"}, map[domain.HazardType]domain.Severity{}},
		{"heavy rain", Conditions{City: "Murree", Main: "Rain", Rain1hMM: 11}, map[domain.HazardType]domain.Severity{domain.HazardFlood: domain.SeverityHigh}},
		{"moderate rain", Conditions{City: "Murree", Main: "Rain", Rain1hMM: 6}, map[domain.HazardType]domain.Severity{domain.HazardFlood: domain.SeverityMedium}},
		{"fog", Conditions{City: "Lahore", Main: "Fog"}, map[domain.HazardType]domain.Severity{domain.HazardFog: domain.SeverityMedium}},
		{"snow and wind", Conditions{City: "Skardu", Main: "Snow", WindMS: 22}, map[domain.HazardType]domain.Severity{domain.HazardSnow: domain.SeverityHigh, domain.HazardOther: domain.SeverityMedium}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cond.Observed = now
			got := Signals("punjab", tc.cond)
			require.Len(t, got, len(tc.want))
			for _, s := range got {
				assert.Equal(t, tc.want[s.Type], s.Severity)
				assert.Equal(t, Provider, s.Provider)
				assert.Equal(t, "punjab", s.Region)
				assert.True(t, s.Active)
			}
		})
	}
}

func TestRegionSignalsToleratesPartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Naran,PK" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"weather":[{"main":"Snow"}],"wind":{"speed":1}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key", time.Second)
	got, err := c.RegionSignals(context.Background(), "kpk", []string{"Naran", "Chitral"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.HazardSnow, got[0].Type)

	_, err = c.RegionSignals(context.Background(), "kpk", []string{"Naran"})
	assert.Error(t, err)
}
