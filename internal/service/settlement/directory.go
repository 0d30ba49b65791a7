package settlement

import (
	"context"

	"go.uber.org/zap"

	"github.com/dumeirei/affiliate-settlement-backend/internal/common/errors"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/logger"
	"github.com/dumeirei/affiliate-settlement-backend/internal/models"
	"github.com/dumeirei/affiliate-settlement-backend/internal/repository"
)

// 候选档案数量上限
const (
	defaultMaxCandidates = 200
	hardMaxCandidates    = 300
)

// linkedRelationStatuses 参与报表的关系状态
var linkedRelationStatuses = []string{models.RelationStatusActive, models.RelationStatusPaused}

// Candidates 候选档案及其关系图
type Candidates struct {
	Profiles  []*models.AffiliateProfile
	Relations []*models.AffiliateRelation

	// Nested 经理 ID 到其名下代理，仅在指定经理的经理视图中填充
	Nested map[int64][]*models.AffiliateProfile

	byID map[int64]*models.AffiliateProfile
}

// IDs 顶层候选档案 ID
func (c *Candidates) IDs() []int64 {
	ids := make([]int64, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		ids = append(ids, p.ID)
	}
	return ids
}

// NestedIDs 所有嵌套代理 ID（去重）
func (c *Candidates) NestedIDs() []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, p := range c.Profiles {
		for _, agent := range c.Nested[p.ID] {
			if _, ok := seen[agent.ID]; ok {
				continue
			}
			seen[agent.ID] = struct{}{}
			ids = append(ids, agent.ID)
		}
	}
	return ids
}

// Profile 按 ID 查找已加载的档案
func (c *Candidates) Profile(id int64) *models.AffiliateProfile {
	return c.byID[id]
}

// ProfileDirectory 解析候选档案和经理-代理关系
type ProfileDirectory struct {
	profileRepo   *repository.AffiliateProfileRepository
	maxCandidates int
	log           *zap.Logger
}

// NewProfileDirectory 创建档案目录
func NewProfileDirectory(profileRepo *repository.AffiliateProfileRepository, maxCandidates int) *ProfileDirectory {
	if maxCandidates <= 0 {
		maxCandidates = defaultMaxCandidates
	}
	if maxCandidates > hardMaxCandidates {
		maxCandidates = hardMaxCandidates
	}
	return &ProfileDirectory{
		profileRepo:   profileRepo,
		maxCandidates: maxCandidates,
		log:           logger.Named("settlement.directory"),
	}
}

// Resolve 解析候选档案
//
// 代理视图指定经理时，只保留与该经理存在 ACTIVE/PAUSED 关系的代理；
// 经理视图指定经理时，候选只有该经理，并加载其名下代理用于嵌套
func (d *ProfileDirectory) Resolve(ctx context.Context, q Query) (*Candidates, error) {
	filter := repository.ProfileFilter{
		Role:   q.View.role(),
		Search: q.Search,
		Limit:  d.maxCandidates,
	}

	if q.ManagerID != nil {
		if q.View == ViewAgents {
			agentIDs, err := d.profileRepo.ListAgentIDsByManager(ctx, *q.ManagerID, linkedRelationStatuses)
			if err != nil {
				return nil, err
			}
			if agentIDs == nil {
				agentIDs = []int64{}
			}
			filter.IDs = agentIDs
		} else {
			filter.IDs = []int64{*q.ManagerID}
		}
	}

	profiles, err := d.profileRepo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	cands := &Candidates{
		Profiles: profiles,
		Nested:   make(map[int64][]*models.AffiliateProfile),
		byID:     make(map[int64]*models.AffiliateProfile, len(profiles)),
	}
	if len(profiles) == 0 {
		cands.Relations = []*models.AffiliateRelation{}
		return cands, nil
	}
	for _, p := range profiles {
		cands.byID[p.ID] = p
	}

	relations, err := d.profileRepo.ListRelations(ctx, cands.IDs(), linkedRelationStatuses)
	if err != nil {
		return nil, err
	}

	// 加载关系另一端的档案，用于角色校验、经理名称和嵌套代理
	missing := make([]int64, 0)
	for _, rel := range relations {
		for _, id := range []int64{rel.ManagerID, rel.AgentID} {
			if _, ok := cands.byID[id]; !ok {
				cands.byID[id] = nil
				missing = append(missing, id)
			}
		}
	}
	if len(missing) > 0 {
		others, err := d.profileRepo.GetByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, p := range others {
			cands.byID[p.ID] = p
		}
	}

	cands.Relations = make([]*models.AffiliateRelation, 0, len(relations))
	for _, rel := range relations {
		if err := rel.Validate(cands.byID[rel.ManagerID], cands.byID[rel.AgentID]); err != nil {
			d.log.Warn("skip invalid affiliate relation",
				zap.Int64("relation_id", rel.ID),
				zap.Error(errors.ErrInvalidRelation.WithError(err)),
			)
			continue
		}
		cands.Relations = append(cands.Relations, rel)
	}

	if q.View == ViewManagers && q.ManagerID != nil {
		d.nestAgents(cands)
	}

	return cands, nil
}

// nestAgents 为顶层经理挂载名下代理，按关系建立时间倒序
func (d *ProfileDirectory) nestAgents(cands *Candidates) {
	for _, manager := range cands.Profiles {
		seen := make(map[int64]struct{})
		agents := make([]*models.AffiliateProfile, 0)
		for _, rel := range cands.Relations {
			if rel.ManagerID != manager.ID {
				continue
			}
			if _, ok := seen[rel.AgentID]; ok {
				continue
			}
			seen[rel.AgentID] = struct{}{}
			agents = append(agents, cands.byID[rel.AgentID])
		}
		cands.Nested[manager.ID] = agents
	}
}

// activeManager 代理当前 ACTIVE 关系的经理
func (c *Candidates) activeManager(agentID int64) *models.AffiliateProfile {
	for _, rel := range c.Relations {
		if rel.AgentID == agentID && rel.Status == models.RelationStatusActive {
			return c.byID[rel.ManagerID]
		}
	}
	return nil
}

// relationCounts 经理名下 ACTIVE/PAUSED 代理数
func (c *Candidates) relationCounts(managerID int64) RelationCounts {
	var counts RelationCounts
	seen := make(map[int64]string)
	for _, rel := range c.Relations {
		if rel.ManagerID != managerID {
			continue
		}
		if prev, ok := seen[rel.AgentID]; ok && prev == models.RelationStatusActive {
			continue
		}
		seen[rel.AgentID] = rel.Status
	}
	for _, status := range seen {
		if status == models.RelationStatusActive {
			counts.ActiveAgents++
		} else {
			counts.PausedAgents++
		}
	}
	return counts
}

// linkedAgentCount 与候选经理存在关系的去重代理数
func (c *Candidates) linkedAgentCount() int {
	managers := make(map[int64]struct{}, len(c.Profiles))
	for _, p := range c.Profiles {
		managers[p.ID] = struct{}{}
	}
	agents := make(map[int64]struct{})
	for _, rel := range c.Relations {
		if _, ok := managers[rel.ManagerID]; ok {
			agents[rel.AgentID] = struct{}{}
		}
	}
	return len(agents)
}

// linkedManagerCount 候选代理的去重在职经理数
func (c *Candidates) linkedManagerCount() int {
	managers := make(map[int64]struct{})
	for _, p := range c.Profiles {
		if m := c.activeManager(p.ID); m != nil {
			managers[m.ID] = struct{}{}
		}
	}
	return len(managers)
}
