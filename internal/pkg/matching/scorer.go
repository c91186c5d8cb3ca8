// Package matching 计算职位与工程师的匹配分，用于 scout 候选人排序。
package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/qs3c/devmatch_server/internal/model"
)

// 各项权重
const (
	WeightSkills     = 50
	WeightExperience = 20
	WeightSalary     = 15
	WeightLocation   = 15
)

const (
	DefaultMinScore = 60
	MaxCandidates   = 50
)

// Candidate 排序后的候选人
type Candidate struct {
	Engineer *model.Engineer `json:"engineer"`
	Score    int             `json:"score"`
}

// Score 返回 0~100 的匹配分
func Score(job *model.Job, engineer *model.Engineer) int {
	if job == nil || engineer == nil {
		return 0
	}
	total := skillScore(job.RequiredSkillNames(), engineer.Skills) +
		experienceScore(engineer.YearsOfExperience) +
		salaryScore(job.SalaryMin, engineer.DesiredSalaryMin) +
		locationScore(job, engineer.Address)
	return int(math.Round(total))
}

func skillScore(jobSkills, engineerSkills []string) float64 {
	required := normalizeSet(jobSkills)
	if len(required) == 0 {
		return 0
	}
	owned := normalizeSet(engineerSkills)
	matched := 0
	for s := range required {
		if _, ok := owned[s]; ok {
			matched++
		}
	}
	return WeightSkills * float64(matched) / float64(len(required))
}

func experienceScore(years int) float64 {
	switch {
	case years >= 5:
		return 20
	case years >= 3:
		return 15
	case years >= 1:
		return 10
	}
	return 0
}

// salaryScore 任一方缺失时不计分
func salaryScore(jobMin, desiredMin *int) float64 {
	if jobMin == nil || desiredMin == nil {
		return 0
	}
	offered := float64(*jobMin)
	desired := float64(*desiredMin)
	switch {
	case offered >= desired:
		return WeightSalary
	case offered >= desired*0.8:
		return 10
	}
	return 0
}

// locationScore 远程直接满分，否则按地点字符串互相包含判断
func locationScore(job *model.Job, address string) float64 {
	if job.RemoteOK {
		return WeightLocation
	}
	loc := strings.ToLower(strings.TrimSpace(job.Location))
	addr := strings.ToLower(strings.TrimSpace(address))
	if loc == "" || addr == "" {
		return 0
	}
	if strings.Contains(loc, addr) || strings.Contains(addr, loc) {
		return WeightLocation
	}
	return 0
}

func normalizeSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

// Rank 排除已 scout 过的工程师后打分，保留 >= minScore 的前 limit 名
func Rank(job *model.Job, engineers []*model.Engineer, excluded map[int64]struct{}, minScore, limit int) []Candidate {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	if limit <= 0 || limit > MaxCandidates {
		limit = MaxCandidates
	}

	candidates := make([]Candidate, 0, len(engineers))
	for _, e := range engineers {
		if _, skip := excluded[e.ID]; skip {
			continue
		}
		score := Score(job, e)
		if score < minScore {
			continue
		}
		candidates = append(candidates, Candidate{Engineer: e, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Engineer.ID < candidates[j].Engineer.ID
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
