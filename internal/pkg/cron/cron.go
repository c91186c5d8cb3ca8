package cron

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task 一个定时任务
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Service 运行每小时与每日（UTC 零点）任务
type Service struct {
	hourly   []Task
	daily    []Task
	interval time.Duration
	logger   *zap.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewService(logger *zap.Logger) *Service {
	return &Service{
		interval: time.Hour,
		logger:   logger.Named("cron"),
		stopChan: make(chan struct{}),
	}
}

// Hourly 注册每小时任务
func (s *Service) Hourly(name string, run func(ctx context.Context) error) {
	s.hourly = append(s.hourly, Task{Name: name, Run: run})
}

// Daily 注册每日任务
func (s *Service) Daily(name string, run func(ctx context.Context) error) {
	s.daily = append(s.daily, Task{Name: name, Run: run})
}

// Start 启动定时任务
func (s *Service) Start() {
	s.wg.Add(2)
	go s.runHourly()
	go s.runDaily()
	s.logger.Info("cron service started",
		zap.Int("hourly_tasks", len(s.hourly)),
		zap.Int("daily_tasks", len(s.daily)),
	)
}

// Stop 停止定时任务并等待正在执行的任务结束
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	s.logger.Info("cron service stopped")
}

func (s *Service) runHourly() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runTasks(s.hourly)
		}
	}
}

func (s *Service) runDaily() {
	defer s.wg.Done()
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))
	defer timer.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-timer.C:
			s.runTasks(s.daily)
			timer.Reset(24 * time.Hour)
		}
	}
}

func (s *Service) runTasks(tasks []Task) int {
	failed := 0
	for _, task := range tasks {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		err := task.Run(ctx)
		cancel()

		if err != nil {
			failed++
			s.logger.Error("task failed", zap.String("task", task.Name), zap.Error(err))
			continue
		}
		s.logger.Info("task completed", zap.String("task", task.Name), zap.Duration("took", time.Since(start)))
	}
	return failed
}

// RunNow 立即执行全部任务（cmd/cleanup 使用），返回失败任务数
func (s *Service) RunNow() int {
	return s.runTasks(append(append([]Task{}, s.hourly...), s.daily...))
}
