package webhook

import (
	"sort"
	"sync"

	"github.com/sankha1545/Bhakasamilani/internal/logger"
)

// EventProcessor 事件处理器接口
type EventProcessor interface {
	Process(event *Event) error
	GetEventType() string
}

// ProcessorManager 事件处理器管理器
type ProcessorManager struct {
	mu         sync.RWMutex
	processors map[string]EventProcessor
}

// NewProcessorManager 创建处理器管理器并注册支付状态处理器
func NewProcessorManager(updater DonationUpdater) *ProcessorManager {
	manager := &ProcessorManager{
		processors: make(map[string]EventProcessor),
	}

	manager.RegisterProcessor(NewPaymentCapturedProcessor(updater))
	manager.RegisterProcessor(NewPaymentFailedProcessor(updater))

	logger.Debug("ProcessorManager initialized with %d processors", len(manager.processors))
	return manager
}

// RegisterProcessor 注册事件处理器
func (pm *ProcessorManager) RegisterProcessor(processor EventProcessor) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.processors[processor.GetEventType()] = processor
}

// GetProcessor 获取指定事件类型的处理器
func (pm *ProcessorManager) GetProcessor(eventType string) (EventProcessor, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	processor, exists := pm.processors[eventType]
	return processor, exists
}

// ProcessEvent 处理事件，未知事件类型返回 handled=false 且不报错
func (pm *ProcessorManager) ProcessEvent(event *Event) (bool, error) {
	processor, exists := pm.GetProcessor(event.Event)
	if !exists {
		logger.Debug("No processor for webhook event type: %s", event.Event)
		return false, nil
	}

	return true, processor.Process(event)
}

// GetSupportedEventTypes 获取支持的事件类型列表
func (pm *ProcessorManager) GetSupportedEventTypes() []string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	eventTypes := make([]string, 0, len(pm.processors))
	for eventType := range pm.processors {
		eventTypes = append(eventTypes, eventType)
	}
	sort.Strings(eventTypes)
	return eventTypes
}
