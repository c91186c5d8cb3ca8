package service

import (
	"context"
	"time"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/pkg/cache"
	"github.com/qs3c/devmatch_server/internal/repository"
)

const skillsCacheKey = "skills:"

// defaultSkills 技能主数据初始值
var defaultSkills = map[string][]string{
	"language": {"Go", "Java", "Python", "TypeScript", "JavaScript", "Ruby", "PHP", "Rust", "Kotlin", "Swift", "C#", "C++"},
	"frontend": {"React", "Vue.js", "Next.js", "Angular"},
	"backend":  {"Spring Boot", "Django", "Ruby on Rails", "Laravel", "Node.js", "gRPC"},
	"database": {"MySQL", "PostgreSQL", "Redis", "MongoDB", "Elasticsearch"},
	"infra":    {"AWS", "GCP", "Azure", "Docker", "Kubernetes", "Terraform"},
	"mobile":   {"iOS", "Android", "Flutter", "React Native"},
	"data":     {"Machine Learning", "Data Analysis", "Spark"},
	"process":  {"Scrum", "CI/CD"},
}

type SkillService struct {
	store *repository.Store
	cache cache.Cache
	ttl   time.Duration
}

func NewSkillService(store *repository.Store, c cache.Cache, cfg *config.Config) *SkillService {
	return &SkillService{
		store: store,
		cache: c,
		ttl:   time.Duration(cfg.Cache.SkillsTTLSec) * time.Second,
	}
}

// List 技能主数据，读穿缓存
func (s *SkillService) List(ctx context.Context, category string) ([]*model.Skill, error) {
	var skills []*model.Skill
	err := cache.GetOrLoad(ctx, s.cache, skillsCacheKey+category, s.ttl, &skills, func(ctx context.Context) (interface{}, error) {
		return s.store.Skills.List(category)
	})
	return skills, err
}

// SeedDefaults 写入缺失的默认技能并清除缓存
func (s *SkillService) SeedDefaults(ctx context.Context) error {
	var skills []*model.Skill
	for category, names := range defaultSkills {
		for _, name := range names {
			skills = append(skills, &model.Skill{Name: name, Category: category})
		}
	}
	if err := s.store.Skills.CreateIgnoreDuplicates(skills); err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	keys := []string{skillsCacheKey}
	for category := range defaultSkills {
		keys = append(keys, skillsCacheKey+category)
	}
	return s.cache.Delete(ctx, keys...)
}
