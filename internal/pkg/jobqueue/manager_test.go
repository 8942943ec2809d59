package jobqueue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetManager() {
	globalManager = nil
	managerOnce = sync.Once{}
}

func TestGetManager(t *testing.T) {
	resetManager()

	manager1 := GetManager()
	manager2 := GetManager()

	assert.NotNil(t, manager1)
	assert.Same(t, manager1, manager2, "GetManager should return the same instance")
	assert.NotNil(t, manager1.queue)
	assert.False(t, manager1.running)
}

func TestManager_GetQueue(t *testing.T) {
	resetManager()

	manager := GetManager()
	queue := manager.GetQueue()

	assert.NotNil(t, queue)
	assert.Same(t, manager.queue, queue)
}

func TestManager_Configure(t *testing.T) {
	resetManager()

	mailer := &fakeMailer{}
	media := &fakeMedia{}
	manager := GetManager()
	manager.Configure(mailer, media)

	assert.Same(t, mailer, manager.queue.mailer)
	assert.Same(t, media, manager.queue.media)
}

func TestManager_IsRunning(t *testing.T) {
	resetManager()

	manager := GetManager()
	assert.False(t, manager.IsRunning())

	manager.mu.Lock()
	manager.running = true
	manager.mu.Unlock()
	assert.True(t, manager.IsRunning())

	manager.mu.Lock()
	manager.running = false
	manager.mu.Unlock()
	assert.False(t, manager.IsRunning())
}

func TestManager_StopWithoutStart(t *testing.T) {
	resetManager()

	manager := GetManager()
	assert.False(t, manager.IsRunning())
	manager.Stop()
	assert.False(t, manager.IsRunning())
}

func TestManagerWorkerCount(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{"Unset", "", 5},
		{"Configured", "8", 8},
		{"Invalid", "many", 5},
		{"Zero falls back to queue default", "0", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JOB_QUEUE_WORKERS", tt.value)
			resetManager()

			assert.Equal(t, tt.expected, GetManager().queue.workers)
		})
	}
	resetManager()
}
