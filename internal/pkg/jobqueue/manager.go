package jobqueue

import (
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/LearnFox/internal/pkg/env"
	"github.com/ManuelReschke/LearnFox/internal/pkg/mail"
)

const defaultWorkerCount = 5

// Manager manages the global job queue
type Manager struct {
	queue   *Queue
	mu      sync.Mutex
	running bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			queue: NewQueue(workerCount()),
		}
	})
	return globalManager
}

// workerCount reads JOB_QUEUE_WORKERS, falling back to 5.
func workerCount() int {
	raw := env.GetEnv("JOB_QUEUE_WORKERS", "")
	if raw == "" {
		return defaultWorkerCount
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Warnf("[JobQueue Manager] Invalid JOB_QUEUE_WORKERS %q, using %d", raw, defaultWorkerCount)
		return defaultWorkerCount
	}
	return n
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Configure wires the dependencies the job processors need.
func (m *Manager) Configure(mailer mail.Mailer, media MediaDeleter) {
	m.queue.SetMailer(mailer)
	m.queue.SetMediaStore(media)
}

// Start starts the job queue
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	m.running = true
	log.Info("[JobQueue Manager] Starting job queue")
	m.queue.Start()
	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue...")
	m.running = false
	m.queue.Stop()
	log.Info("[JobQueue Manager] Stopped successfully")
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
