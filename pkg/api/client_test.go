package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"blinkwallet/pkg/models"
)

func TestFetchRatesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"current": map[string]float64{"BTC": 50000, "USDT": 1},
			"roi":     map[string]float64{"BTC": 2.5},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL)
	data, err := c.FetchRates()
	assert.NoError(t, err)
	assert.Equal(t, 50000.0, data.Current["BTC"])
	assert.Equal(t, 2.5, data.ROI["BTC"])
}

func TestFetchRatesFlat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]float64{"ETH": 3000, "USDT": 1})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL)
	data, err := c.FetchRates()
	assert.NoError(t, err)
	assert.Equal(t, 3000.0, data.Current["ETH"])
	assert.Empty(t, data.ROI)
}

func TestFetchRatesBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL)
	_, err := c.FetchRates()
	assert.Error(t, err)
}

func TestLoadBalances(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("id"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"balances": map[string]float64{"BTC": 0.5},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	balances, err := c.LoadBalances(7)
	assert.NoError(t, err)
	assert.Equal(t, 0.5, balances["BTC"])
}

func TestSaveBalances(t *testing.T) {
	var got struct {
		UserID   int64              `json:"user_id"`
		Balances map[string]float64 `json:"balances"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/balances", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	err := c.SaveBalances(7, map[string]float64{"USDT": 120})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, 120.0, got.Balances["USDT"])
}

func TestTransferRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "recipient not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	err := c.Transfer(models.TransferRequest{FromUserID: 1, ToTag: "nobody", Symbol: "USDT", Amount: 5})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "recipient not found")
}

func TestLoginSessionCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		assert.Equal(t, "alice", creds.Username)
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok"})
		_ = json.NewEncoder(w).Encode(models.SessionUser{ID: 3, Name: "Alice", Tag: "alice"})
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err != nil || cookie.Value != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(models.SessionUser{ID: 3, Name: "Alice", Tag: "alice"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, "")

	_, err := c.SessionUser()
	assert.Error(t, err)

	user, err := c.Login(models.Credentials{Username: "alice", Password: "pw"})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)

	user, err = c.SessionUser()
	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Tag)
}
