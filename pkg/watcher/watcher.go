package watcher

import (
	"context"
	"sync"
	"time"

	"blinkwallet/pkg/api"
	"blinkwallet/pkg/logger"
	"blinkwallet/pkg/models"
	"blinkwallet/pkg/store"
)

// DataSource defines the interface for talking to the backend.
type DataSource interface {
	FetchRates() (models.RatesData, error)
	LoadBalances(userID int64) (map[string]float64, error)
	SaveBalances(userID int64, balances map[string]float64) error
	Transfer(req models.TransferRequest) error
}

// RealDataSource implements DataSource using the api package.
type RealDataSource struct {
	Client *api.Client
}

func (d *RealDataSource) FetchRates() (models.RatesData, error) {
	return d.Client.FetchRates()
}

func (d *RealDataSource) LoadBalances(userID int64) (map[string]float64, error) {
	return d.Client.LoadBalances(userID)
}

func (d *RealDataSource) SaveBalances(userID int64, balances map[string]float64) error {
	return d.Client.SaveBalances(userID, balances)
}

func (d *RealDataSource) Transfer(req models.TransferRequest) error {
	return d.Client.Transfer(req)
}

// Watcher polls the rates feed and backend balances in the background and
// fans events out to subscribers. Mutations to wallet state stay in the
// store; the watcher only moves data between the store and the backend.
type Watcher struct {
	st       *store.Store
	interval time.Duration

	subscribers []Subscriber
	mu          sync.RWMutex
	stopChan    chan struct{}
	dataSource  DataSource

	balancesLoaded bool
}

// NewWatcher creates a new Watcher instance.
func NewWatcher(st *store.Store, ds DataSource, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Watcher{
		st:         st,
		interval:   interval,
		stopChan:   make(chan struct{}),
		dataSource: ds,
	}
}

// SetDataSource allows overriding the data source (useful for testing).
func (w *Watcher) SetDataSource(ds DataSource) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dataSource = ds
}

// Subscribe adds a new subscriber and returns a channel to receive events.
func (w *Watcher) Subscribe() Subscriber {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(Subscriber, 100)
	w.subscribers = append(w.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber.
func (w *Watcher) Unsubscribe(ch Subscriber) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, sub := range w.subscribers {
		if sub == ch {
			w.subscribers = append(w.subscribers[:i], w.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

func (w *Watcher) notify(event Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, sub := range w.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber is slow, drop the event.
		}
	}
}

// Start begins the polling loop.
func (w *Watcher) Start(ctx context.Context) {
	go w.pollingLoop(ctx)
}

// Stop stops the polling loop.
func (w *Watcher) Stop() {
	close(w.stopChan)
}

func (w *Watcher) pollingLoop(ctx context.Context) {
	// Initial fetch
	w.fetchAll()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.fetchAll()
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) fetchAll() {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		data, err := w.ds().FetchRates()
		if err != nil {
			logger.Warn("rates fetch failed: %v", err)
			w.notify(Event{Type: EventRatesUpdated, Data: models.RatesData{Err: err}})
			return
		}
		w.st.SetRates(data.Current, data.ROI)
		w.notify(Event{Type: EventRatesUpdated, Data: data})
	}()

	if userID, _, ok := w.st.User(); ok && !w.loadedOnce() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loadBalances(userID)
		}()
	}

	wg.Wait()
}

// LoadBalances fetches the backend balance snapshot for the logged-in user
// once, asynchronously. Called after login and on startup.
func (w *Watcher) LoadBalances() {
	userID, _, ok := w.st.User()
	if !ok {
		return
	}
	go w.loadBalances(userID)
}

func (w *Watcher) loadBalances(userID int64) {
	balances, err := w.ds().LoadBalances(userID)
	if err != nil {
		logger.Warn("balance load failed: %v", err)
		w.notify(Event{Type: EventBalancesLoaded, Data: models.BalancesData{UserID: userID, Err: err}})
		return
	}
	w.st.SetBalances(balances)
	w.setLoaded()
	w.notify(Event{Type: EventBalancesLoaded, Data: models.BalancesData{UserID: userID, Balances: balances}})
}

// SyncBalances pushes the local balances to the backend without blocking
// the caller. The result arrives as an EventSyncResult.
func (w *Watcher) SyncBalances() {
	userID, _, ok := w.st.User()
	if !ok {
		return
	}
	balances := w.st.Balances()
	go func() {
		err := w.ds().SaveBalances(userID, balances)
		if err != nil {
			logger.Warn("balance sync failed: %v", err)
		}
		w.notify(Event{Type: EventSyncResult, Data: models.SyncResult{Op: "balances", Err: err}})
	}()
}

// Transfer asks the backend to settle a transfer, fire and forget. The
// local debit has already been applied by the caller.
func (w *Watcher) Transfer(toTag, symbol string, amount float64) {
	userID, _, ok := w.st.User()
	if !ok {
		return
	}
	req := models.TransferRequest{FromUserID: userID, ToTag: toTag, Symbol: symbol, Amount: amount}
	go func() {
		err := w.ds().Transfer(req)
		if err != nil {
			logger.Warn("transfer sync failed: %v", err)
		}
		w.notify(Event{Type: EventSyncResult, Data: models.SyncResult{Op: "transfer", Err: err}})
	}()
}

func (w *Watcher) ds() DataSource {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.dataSource
}

func (w *Watcher) loadedOnce() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.balancesLoaded
}

func (w *Watcher) setLoaded() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balancesLoaded = true
}
