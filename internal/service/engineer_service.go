package service

import (
	"errors"
	"strings"

	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/validate"
	"github.com/qs3c/devmatch_server/internal/repository"
)

var ErrEngineerNotFound = errors.New("工程师不存在")

type EngineerService struct {
	store *repository.Store
}

func NewEngineerService(store *repository.Store) *EngineerService {
	return &EngineerService{store: store}
}

// GetByUserID 当前工程师用户的资料
func (s *EngineerService) GetByUserID(userID int64) (*model.Engineer, error) {
	engineer, err := s.store.Engineers.GetByUserID(userID)
	if err != nil {
		return nil, notFound(err, ErrEngineerNotFound)
	}
	return engineer, nil
}

// UpdateProfile 更新工程师资料
func (s *EngineerService) UpdateProfile(userID int64, req *dto.UpdateEngineerRequest) (*model.Engineer, error) {
	engineer, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	min, max := engineer.DesiredSalaryMin, engineer.DesiredSalaryMax
	if req.DesiredSalaryMin != nil {
		min = req.DesiredSalaryMin
	}
	if req.DesiredSalaryMax != nil {
		max = req.DesiredSalaryMax
	}
	if min != nil && max != nil && *min > *max {
		return nil, validate.Field("desired_salary_max", "不能小于期望最低年薪")
	}

	if req.Name != nil {
		engineer.Name = strings.TrimSpace(*req.Name)
	}
	if req.Title != nil {
		engineer.Title = *req.Title
	}
	if req.Bio != nil {
		engineer.Bio = *req.Bio
	}
	if req.Address != nil {
		engineer.Address = *req.Address
	}
	if req.YearsOfExperience != nil {
		engineer.YearsOfExperience = *req.YearsOfExperience
	}
	if req.Skills != nil {
		engineer.Skills = normalizeSkills(req.Skills)
	}
	if req.GithubURL != nil {
		engineer.GithubURL = *req.GithubURL
	}
	if req.IsOpenToScout != nil {
		engineer.IsOpenToScout = *req.IsOpenToScout
	}
	engineer.DesiredSalaryMin = min
	engineer.DesiredSalaryMax = max

	if err := s.store.Engineers.Update(engineer); err != nil {
		return nil, err
	}
	return engineer, nil
}

// GetPublic 企业查看的工程师资料
func (s *EngineerService) GetPublic(id int64) (*dto.PublicEngineer, error) {
	engineer, err := s.store.Engineers.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrEngineerNotFound)
	}
	return PublicEngineer(engineer), nil
}

// PublicEngineer 隐去期望薪资与简历等私有字段
func PublicEngineer(e *model.Engineer) *dto.PublicEngineer {
	skills := []string(e.Skills)
	if skills == nil {
		skills = []string{}
	}
	return &dto.PublicEngineer{
		ID:                e.ID,
		UserID:            e.UserID,
		Name:              e.Name,
		Title:             e.Title,
		Bio:               e.Bio,
		Address:           e.Address,
		YearsOfExperience: e.YearsOfExperience,
		Skills:            skills,
		GithubURL:         e.GithubURL,
		AvatarURL:         e.AvatarURL,
		IsOpenToScout:     e.IsOpenToScout,
	}
}
