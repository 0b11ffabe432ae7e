package mongostore

import (
	"context"
	"time"

	"civic-portal/internal/shared/model"
	"civic-portal/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ============================================================================
// ProposalStore
// ============================================================================

func (s *Store) CreateProposal(ctx context.Context, p *model.Proposal) error {
	// 类别枚举在存储层兜底校验（对应 mongoose schema enum）
	if !model.ValidCategory(p.Category) {
		return storage.ErrInvalidCategory
	}
	if !model.ValidStatus(p.Status) {
		p.Status = model.StatusNew
	}
	return insertOne(ctx, s.col(ColProposals), p)
}

func (s *Store) GetProposal(ctx context.Context, id int64) (*model.Proposal, error) {
	return findOne[model.Proposal](ctx, s.col(ColProposals), bson.D{{Key: "_id", Value: id}})
}

// ListProposals 单次 $lookup 聚合附带评论数，created_at 倒序
func (s *Store) ListProposals(ctx context.Context) ([]*model.Proposal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: ColComments},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "proposal_id"},
			{Key: "as", Value: "comments_data"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "comment_count", Value: bson.D{{Key: "$size", Value: "$comments_data"}}},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "comments_data", Value: 0}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
	}
	return aggregate[model.Proposal](ctx, s.col(ColProposals), pipeline)
}

func (s *Store) ListProposalsByIDs(ctx context.Context, ids []int64) ([]*model.Proposal, error) {
	return findMany[model.Proposal](ctx, s.col(ColProposals),
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
}

// IncrementVotes 加一票；id 不存在时静默忽略
func (s *Store) IncrementVotes(ctx context.Context, id int64) error {
	_, err := s.col(ColProposals).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{
			{Key: "$inc", Value: bson.D{{Key: "votes", Value: 1}}},
			{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now()}}},
		})
	return wrapError(err)
}

// ConsolidateProposals 合并持久化：主提案更新 → 败者删除 → 败者评论删除
//
// 三步顺序执行，非原子（见包文档）。master 的 Votes/Status/Title
// 由调用方（合并算法）预先算好。
func (s *Store) ConsolidateProposals(ctx context.Context, master *model.Proposal, loserIDs []int64) error {
	if err := updateFields(ctx, s.col(ColProposals), master.ID, bson.D{
		{Key: "votes", Value: master.Votes},
		{Key: "status", Value: master.Status},
		{Key: "title", Value: master.Title},
		{Key: "updated_at", Value: time.Now()},
	}); err != nil {
		return err
	}

	inLosers := bson.D{{Key: "$in", Value: loserIDs}}
	if _, err := s.col(ColProposals).DeleteMany(ctx, bson.D{{Key: "_id", Value: inLosers}}); err != nil {
		return wrapError(err)
	}
	// 败者的评论一并清理，不留悬挂引用
	if _, err := s.col(ColComments).DeleteMany(ctx, bson.D{{Key: "proposal_id", Value: inLosers}}); err != nil {
		return wrapError(err)
	}
	return nil
}

// DeleteProposalCascade 删除提案并级联删除其全部评论
func (s *Store) DeleteProposalCascade(ctx context.Context, id int64) error {
	if err := deleteByID(ctx, s.col(ColProposals), id); err != nil {
		return err
	}
	_, err := s.col(ColComments).DeleteMany(ctx, bson.D{{Key: "proposal_id", Value: id}})
	return wrapError(err)
}

// ============================================================================
// ReportStore
// ============================================================================

// countGroup 按指定字段分组计数
func (s *Store) countGroup(ctx context.Context, field string) (map[string]int, error) {
	type bucket struct {
		ID    string `bson:"_id"`
		Count int    `bson:"count"`
	}
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	buckets, err := aggregate[bucket](ctx, s.col(ColProposals), pipeline)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(buckets))
	for _, b := range buckets {
		out[b.ID] = b.Count
	}
	return out, nil
}

func (s *Store) CountByCategory(ctx context.Context) (map[model.ProposalCategory]int, error) {
	raw, err := s.countGroup(ctx, "category")
	if err != nil {
		return nil, err
	}
	out := make(map[model.ProposalCategory]int, len(raw))
	for k, v := range raw {
		out[model.ProposalCategory(k)] = v
	}
	return out, nil
}

func (s *Store) CountByStatus(ctx context.Context) (map[model.ProposalStatus]int, error) {
	raw, err := s.countGroup(ctx, "status")
	if err != nil {
		return nil, err
	}
	out := make(map[model.ProposalStatus]int, len(raw))
	for k, v := range raw {
		out[model.ProposalStatus(k)] = v
	}
	return out, nil
}

func (s *Store) TotalVotes(ctx context.Context) (int, error) {
	type total struct {
		Votes int `bson:"votes"`
	}
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "votes", Value: bson.D{{Key: "$sum", Value: "$votes"}}},
		}}},
	}
	totals, err := aggregate[total](ctx, s.col(ColProposals), pipeline)
	if err != nil {
		return 0, err
	}
	if len(totals) == 0 {
		return 0, nil
	}
	return totals[0].Votes, nil
}

func (s *Store) CountComments(ctx context.Context) (int, error) {
	n, err := s.col(ColComments).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, wrapError(err)
	}
	return int(n), nil
}
