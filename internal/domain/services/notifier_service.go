package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/config"
	applog "github.com/axxaxinx/user-management-final-123/pkg/logger"
)

// InterfaceNotifierService publishes workflow events after they are committed.
type InterfaceNotifierService interface {
	PublishWorkflow(ctx context.Context, wf *models.Workflow) error
	Close()
}

// WorkflowEvent MQTT消息体
type WorkflowEvent struct {
	ID         uint                `json:"id"`
	Type       models.WorkflowType `json:"type"`
	Status     models.Status       `json:"status"`
	Details    string              `json:"details"`
	EmployeeID *uint               `json:"employeeId,omitempty"`
	RequestID  *uint               `json:"requestId,omitempty"`
	Timestamp  int64               `json:"timestamp"`
}

// MQTTNotifierService 通过MQTT发布工作流事件
type MQTTNotifierService struct {
	Client         mqtt.Client
	Config         *config.Config
	maxRetries     int
	publishTimeout time.Duration
	cancel         context.CancelFunc
	done           chan struct{}
}

// NoopNotifierService 未配置MQTT时使用
type NoopNotifierService struct{}

// ErrNotifierOffline 与MQTT服务器未连接时发布失败
var ErrNotifierOffline = errors.New("mqtt broker not connected")

// NewNotifierService 根据配置创建通知服务, 连接在后台建立, 不阻塞启动
func NewNotifierService(cfg *config.Config) InterfaceNotifierService {
	if cfg.MQTTBrokerURL == "" {
		return &NoopNotifierService{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &MQTTNotifierService{
		Config:         cfg,
		maxRetries:     5,
		publishTimeout: 3 * time.Second,
		cancel:         cancel,
		done:           make(chan struct{}),
	}
	s.setupMQTTClient()
	go func() {
		defer close(s.done)
		if err := s.connect(ctx); err != nil && ctx.Err() == nil {
			applog.Error("[MQTT] %v, 工作流事件将不会发布", err)
		}
	}()
	return s
}

// WorkflowTopic returns the topic a workflow event is published on.
func WorkflowTopic(prefix string, t models.WorkflowType) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = "hr"
	}
	return fmt.Sprintf("%s/workflows/%s", prefix, t)
}

// setupMQTTClient 设置MQTT客户端
func (s *MQTTNotifierService) setupMQTTClient() {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.Config.MQTTBrokerURL)
	// 使用唯一的客户端ID，避免同一服务多实例冲突
	opts.SetClientID(fmt.Sprintf("%s-%s", s.Config.MQTTClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetConnectTimeout(5 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)
	opts.SetOrderMatters(true)

	if s.Config.MQTTUsername != "" {
		opts.SetUsername(s.Config.MQTTUsername)
		opts.SetPassword(s.Config.MQTTPassword)
	}

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		applog.Warning("[MQTT] 连接丢失: %v", err)
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		applog.Info("[MQTT] 成功连接到 %s", s.Config.MQTTBrokerURL)
	})

	s.Client = mqtt.NewClient(opts)
}

// connect 启动时连接MQTT服务器，带有指数退避重试; 之后由 AutoReconnect 维持连接
func (s *MQTTNotifierService) connect(ctx context.Context) error {
	var err error
	for i := 0; i < s.maxRetries; i++ {
		token := s.Client.Connect()
		if token.WaitTimeout(5*time.Second) && token.Error() == nil {
			return nil
		}
		err = token.Error()

		backoff := time.Duration(1<<uint(i)) * time.Second // 1s, 2s, 4s ...
		applog.Warning("[MQTT] 连接尝试 %d/%d 失败: %v, 将在 %v 后重试", i+1, s.maxRetries, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("mqtt connect failed after %d attempts: %v", s.maxRetries, err)
}

// PublishWorkflow 发布工作流事件, 未连接时立即返回 ErrNotifierOffline
func (s *MQTTNotifierService) PublishWorkflow(ctx context.Context, wf *models.Workflow) error {
	if !s.Client.IsConnectionOpen() {
		return ErrNotifierOffline
	}

	payload, err := json.Marshal(WorkflowEvent{
		ID:         wf.ID,
		Type:       wf.Type,
		Status:     wf.Status,
		Details:    wf.Details,
		EmployeeID: wf.EmployeeID,
		RequestID:  wf.RequestID,
		Timestamp:  wf.CreatedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal workflow event: %w", err)
	}

	topic := WorkflowTopic(s.Config.MQTTTopicPrefix, wf.Type)
	token := s.Client.Publish(topic, byte(s.Config.MQTTQoS), false, payload)
	timer := time.NewTimer(s.publishTimeout)
	defer timer.Stop()
	select {
	case <-token.Done():
	case <-timer.C:
		return fmt.Errorf("publish to %s timed out", topic)
	case <-ctx.Done():
		return ctx.Err()
	}
	if token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}
	applog.L().Debug().Str("topic", topic).Uint("workflow_id", wf.ID).Msg("workflow event published")
	return nil
}

// Close 停止后台连接并断开与MQTT服务器的连接
func (s *MQTTNotifierService) Close() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
}

func (NoopNotifierService) PublishWorkflow(context.Context, *models.Workflow) error { return nil }
func (NoopNotifierService) Close()                                              {}

// publishAll sends committed workflows, logging failures.
func publishAll(ctx context.Context, n InterfaceNotifierService, workflows ...*models.Workflow) {
	if n == nil {
		return
	}
	for _, wf := range workflows {
		if err := n.PublishWorkflow(ctx, wf); err != nil {
			applog.Warning("publish workflow %d: %v", wf.ID, err)
		}
	}
}
