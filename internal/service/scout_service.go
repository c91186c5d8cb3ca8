package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/clock"
	"github.com/qs3c/devmatch_server/internal/pkg/email"
	"github.com/qs3c/devmatch_server/internal/pkg/matching"
	"github.com/qs3c/devmatch_server/internal/pkg/metrics"
	"github.com/qs3c/devmatch_server/internal/pkg/pubsub"
	"github.com/qs3c/devmatch_server/internal/repository"
)

var (
	ErrScoutNotFound         = errors.New("scout 不存在")
	ErrAlreadyScouted        = errors.New("已经向该工程师发送过 scout")
	ErrEngineerClosedToScout = errors.New("该工程师不接受 scout")
	ErrNoCandidates          = errors.New("没有符合条件的候选人")
)

type ScoutService struct {
	store    *repository.Store
	quota    *QuotaService
	cfg      *config.Config
	clock    clock.Clock
	mailer   Mailer
	realtime Realtime
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewScoutService(store *repository.Store, quota *QuotaService, cfg *config.Config, clk clock.Clock, mailer Mailer, realtime Realtime, m *metrics.Metrics, logger *zap.Logger) *ScoutService {
	return &ScoutService{
		store:    store,
		quota:    quota,
		cfg:      cfg,
		clock:    clk,
		mailer:   mailerOrNop(mailer),
		realtime: realtimeOrNop(realtime),
		metrics:  m,
		logger:   logger.Named("scout"),
	}
}

// Candidates 对接受 scout 的工程师打分排序，排除已就该职位 scout 过的工程师
func (s *ScoutService) Candidates(userID, jobID int64, minScore int) ([]dto.ScoutCandidate, error) {
	job, err := ownedJob(s.store, userID, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.quota.CheckScout(job.Company); err != nil {
		return nil, err
	}

	ranked, err := s.rank(job, nil, minScore)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ScoutCandidate, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, dto.ScoutCandidate{Engineer: PublicEngineer(c.Engineer), Score: c.Score})
	}
	return out, nil
}

// Send 向单个工程师发送 scout，job_id 可选
func (s *ScoutService) Send(ctx context.Context, userID int64, req *dto.SendScoutRequest) (*model.ScoutEmail, error) {
	company, err := s.store.Companies.GetByUserID(userID)
	if err != nil {
		return nil, notFound(err, ErrCompanyNotFound)
	}
	if _, err := s.quota.ScoutRemaining(company); err != nil {
		return nil, err
	}

	engineer, err := s.store.Engineers.GetByID(req.EngineerID)
	if err != nil {
		return nil, notFound(err, ErrEngineerNotFound)
	}
	if !engineer.IsOpenToScout {
		return nil, ErrEngineerClosedToScout
	}

	var job *model.Job
	if req.JobID != nil {
		job, err = ownedJob(s.store, userID, *req.JobID)
		if err != nil {
			return nil, err
		}
	}

	scouted, err := s.store.Scouts.ScoutedEngineerIDs(company.ID, req.JobID)
	if err != nil {
		return nil, err
	}
	if _, ok := scouted[engineer.ID]; ok {
		return nil, ErrAlreadyScouted
	}

	scout := &model.ScoutEmail{
		CompanyID:  company.ID,
		EngineerID: engineer.ID,
		JobID:      req.JobID,
		Subject:    req.Subject,
		Content:    req.Content,
		CreatedAt:  s.clock.Now(),
	}
	if job != nil {
		score := matching.Score(job, engineer)
		scout.MatchScore = &score
	}
	if err := s.store.Scouts.Create(scout); err != nil {
		return nil, err
	}

	s.metrics.ScoutsSent(1)
	s.deliver(ctx, company, engineer, scout)
	return scout, nil
}

// BulkSend 按匹配分批量发送，受每日剩余额度截断
func (s *ScoutService) BulkSend(ctx context.Context, userID, jobID int64, req *dto.BulkScoutRequest) (*dto.BulkScoutResponse, error) {
	job, err := ownedJob(s.store, userID, jobID)
	if err != nil {
		return nil, err
	}
	company := job.Company
	remaining, err := s.quota.ScoutRemaining(company)
	if err != nil {
		return nil, err
	}

	ranked, err := s.rank(job, req.EngineerIDs, req.MinScore)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, ErrNoCandidates
	}
	if len(ranked) > remaining {
		ranked = ranked[:remaining]
	}

	now := s.clock.Now()
	scouts := make([]*model.ScoutEmail, 0, len(ranked))
	for _, c := range ranked {
		score := c.Score
		scouts = append(scouts, &model.ScoutEmail{
			CompanyID:  company.ID,
			EngineerID: c.Engineer.ID,
			JobID:      &job.ID,
			Subject:    req.Subject,
			Content:    req.Content,
			MatchScore: &score,
			CreatedAt:  now,
		})
	}
	if err := s.store.Scouts.CreateBatch(scouts); err != nil {
		return nil, err
	}

	resp := &dto.BulkScoutResponse{Sent: len(scouts), Items: make([]dto.ScoutSent, 0, len(scouts))}
	for i, scout := range scouts {
		resp.Items = append(resp.Items, dto.ScoutSent{
			ScoutID:    scout.ID,
			EngineerID: scout.EngineerID,
			Score:      ranked[i].Score,
		})
		s.deliver(ctx, company, ranked[i].Engineer, scout)
	}
	s.metrics.ScoutsSent(len(scouts))
	return resp, nil
}

// ListSent 企业发出的 scout
func (s *ScoutService) ListSent(userID int64, page repository.Page) ([]*model.ScoutEmail, int64, error) {
	company, err := s.store.Companies.GetByUserID(userID)
	if err != nil {
		return nil, 0, notFound(err, ErrCompanyNotFound)
	}
	return s.store.Scouts.ListByCompany(company.ID, page)
}

// ListReceived 工程师收到的 scout
func (s *ScoutService) ListReceived(userID int64, page repository.Page) ([]*model.ScoutEmail, int64, error) {
	engineer, err := s.store.Engineers.GetByUserID(userID)
	if err != nil {
		return nil, 0, notFound(err, ErrEngineerNotFound)
	}
	return s.store.Scouts.ListByEngineer(engineer.ID, page)
}

// MarkRead 工程师标记 scout 已读
func (s *ScoutService) MarkRead(userID, id int64) error {
	scout, err := s.received(userID, id)
	if err != nil {
		return err
	}
	return s.store.Scouts.MarkRead(scout.ID, s.clock.Now())
}

// Reply 以消息形式回复 scout，消息与回复标记在同一事务中写入
func (s *ScoutService) Reply(ctx context.Context, userID, id int64, content string) (*model.Message, error) {
	scout, err := s.received(userID, id)
	if err != nil {
		return nil, err
	}
	if scout.Company == nil {
		return nil, ErrCompanyNotFound
	}

	now := s.clock.Now()
	msg := &model.Message{
		SenderID:     userID,
		ReceiverID:   scout.Company.UserID,
		ScoutEmailID: &scout.ID,
		Content:      content,
		CreatedAt:    now,
	}
	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if err := tx.Messages.Create(msg); err != nil {
			return err
		}
		return tx.Scouts.MarkReplied(scout.ID, now)
	})
	if err != nil {
		return nil, err
	}

	if err := s.realtime.Publish(ctx, msg.ReceiverID, pubsub.EventNewMessage, msg); err != nil {
		s.logger.Warn("push scout reply failed", zap.Int64("scout_id", scout.ID), zap.Error(err))
	}
	return msg, nil
}

func (s *ScoutService) received(userID, id int64) (*model.ScoutEmail, error) {
	engineer, err := s.store.Engineers.GetByUserID(userID)
	if err != nil {
		return nil, notFound(err, ErrEngineerNotFound)
	}
	scout, err := s.store.Scouts.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrScoutNotFound)
	}
	if scout.EngineerID != engineer.ID {
		return nil, ErrForbidden
	}
	return scout, nil
}

func (s *ScoutService) rank(job *model.Job, engineerIDs []int64, minScore int) ([]matching.Candidate, error) {
	scouted, err := s.store.Scouts.ScoutedEngineerIDs(job.CompanyID, &job.ID)
	if err != nil {
		return nil, err
	}
	if minScore <= 0 {
		minScore = s.cfg.Scout.MinScore
	}

	engineers, err := s.store.Engineers.ListOpenToScout(engineerIDs)
	if err != nil {
		return nil, err
	}
	return matching.Rank(job, engineers, scouted, minScore, s.cfg.Scout.MaxCandidates), nil
}

// deliver 邮件与站内推送都是尽力而为
func (s *ScoutService) deliver(ctx context.Context, company *model.Company, engineer *model.Engineer, scout *model.ScoutEmail) {
	if engineer.User != nil {
		s.mailer.Notify(email.ScoutReceived(engineer.User.Email, engineer.Name, company.Name, scout.Subject, s.cfg.Email.BaseURL))
	}
	if err := s.realtime.Publish(ctx, engineer.UserID, pubsub.EventNewScout, scout); err != nil {
		s.logger.Warn("push scout failed", zap.Int64("scout_id", scout.ID), zap.Error(err))
	}
}
