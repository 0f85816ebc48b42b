package metrics

import "time"

// DBCounter reports how many databases a cache currently holds open.
// database.Manager satisfies this; the interface exists so this package
// doesn't need to import pkg/database (which itself sits below pkg/toc and
// pkg/index in the dependency graph, both of which also report metrics).
type DBCounter interface {
	Len() int
}

// Collector periodically samples gauge-style metrics that have no natural
// call site of their own, such as the size of the database manager's cache.
type Collector struct {
	manager DBCounter
	stopCh  chan struct{}
}

// NewCollector creates a new metrics collector for manager.
func NewCollector(manager DBCounter) *Collector {
	return &Collector{
		manager: manager,
		stopCh:  make(chan struct{}),
	}
}

// Start begins collecting metrics every 15s.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	DBsOpen.Set(float64(c.manager.Len()))
}
