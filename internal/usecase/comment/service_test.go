package comment

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoinsight/domain"
)

// fakeCommentRepo keeps comments in memory and hands out ids and
// timestamps the way the real table would: ids ascending, created_at
// advancing one second per insert.
type fakeCommentRepo struct {
	seq      int64
	now      time.Time
	comments map[int64]domain.Comment
}

var _ domain.CommentRepository = (*fakeCommentRepo)(nil)

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		comments: make(map[int64]domain.Comment),
	}
}

func (f *fakeCommentRepo) Store(ctx context.Context, c *domain.Comment) error {
	f.seq++
	f.now = f.now.Add(time.Second)
	c.ID = f.seq
	c.CreatedAt = f.now
	f.comments[c.ID] = *c
	return nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (f *fakeCommentRepo) FetchByArticle(ctx context.Context, articleID int64) ([]*domain.Comment, error) {
	var res []*domain.Comment
	for _, c := range f.comments {
		if c.ArticleID != articleID || c.IsDeleted {
			continue
		}
		cp := c
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.Before(res[j].CreatedAt)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (f *fakeCommentRepo) CountByArticle(ctx context.Context, articleID int64) (int64, error) {
	var count int64
	for _, c := range f.comments {
		if c.ArticleID == articleID && !c.IsDeleted {
			count++
		}
	}
	return count, nil
}

func (f *fakeCommentRepo) UpdateContent(ctx context.Context, id int64, content string, updatedAt time.Time) error {
	c, ok := f.comments[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Content = content
	c.UpdatedAt = &updatedAt
	f.comments[id] = c
	return nil
}

func (f *fakeCommentRepo) MarkDeleted(ctx context.Context, id int64) error {
	c, ok := f.comments[id]
	if !ok {
		return nil
	}
	c.IsDeleted = true
	f.comments[id] = c
	return nil
}

// fakeBloom answers for a fixed set of article ids.
type fakeBloom struct {
	known map[int64]bool
	err   error
}

var _ domain.BloomRepository = (*fakeBloom)(nil)

func newFakeBloom(ids ...int64) *fakeBloom {
	known := make(map[int64]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return &fakeBloom{known: known}
}

func (f *fakeBloom) Add(ctx context.Context, id int64) error {
	f.known[id] = true
	return nil
}

func (f *fakeBloom) Exists(ctx context.Context, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.known[id], nil
}

func (f *fakeBloom) BulkAdd(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		f.known[id] = true
	}
	return nil
}

const articleID = int64(42)

func newTestService() (*service, *fakeCommentRepo, *fakeBloom) {
	repo := newFakeCommentRepo()
	bloom := newFakeBloom(articleID)
	return NewService(repo, bloom), repo, bloom
}

func TestAdd(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	rootID, err := svc.Add(ctx, articleID, "alice", "first!", nil)
	require.NoError(t, err)
	assert.NotZero(t, rootID)

	replyID, err := svc.Add(ctx, articleID, "bob", "welcome", &rootID)
	require.NoError(t, err)
	assert.NotEqual(t, rootID, replyID)

	stored, err := repo.GetByID(ctx, replyID)
	require.NoError(t, err)
	assert.Equal(t, articleID, stored.ArticleID)
	require.NotNil(t, stored.ParentID)
	assert.Equal(t, rootID, *stored.ParentID)
}

func TestAddBlankContent(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, articleID, "alice", "   \n\t ", nil)
	assert.True(t, errors.Is(err, domain.ErrBadParamInput))
	assert.Empty(t, repo.comments)
}

func TestAddTrimsContent(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	id, err := svc.Add(ctx, articleID, "alice", "  hello  ", nil)
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Content)
}

func TestAddUnknownArticle(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, int64(999), "alice", "hello", nil)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Empty(t, repo.comments)
}

func TestAddBloomFailureFallsThrough(t *testing.T) {
	// A broken filter must not block writes; existence is then the
	// database's problem.
	svc, repo, bloom := newTestService()
	bloom.err = errors.New("connection refused")
	ctx := context.Background()

	_, err := svc.Add(ctx, articleID, "alice", "hello", nil)
	require.NoError(t, err)
	assert.Len(t, repo.comments, 1)
}

func TestAddMissingParent(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	ghost := int64(12345)
	_, err := svc.Add(ctx, articleID, "alice", "hello", &ghost)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Empty(t, repo.comments)
}

func TestAddCrossArticleParent(t *testing.T) {
	svc, repo, bloom := newTestService()
	ctx := context.Background()

	otherArticle := int64(7)
	require.NoError(t, bloom.Add(ctx, otherArticle))

	parentID, err := svc.Add(ctx, otherArticle, "alice", "elsewhere", nil)
	require.NoError(t, err)

	_, err = svc.Add(ctx, articleID, "bob", "reply", &parentID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Len(t, repo.comments, 1)
}

func TestAddDeletedParent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	parentID, err := svc.Add(ctx, articleID, "alice", "soon gone", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, parentID, "alice"))

	_, err = svc.Add(ctx, articleID, "bob", "too late", &parentID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestFetchTreeShape(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	// a and b are roots; a has two replies, the first reply has a
	// nested reply of its own.
	a, err := svc.Add(ctx, articleID, "alice", "root a", nil)
	require.NoError(t, err)
	b, err := svc.Add(ctx, articleID, "bob", "root b", nil)
	require.NoError(t, err)
	a1, err := svc.Add(ctx, articleID, "carol", "reply a1", &a)
	require.NoError(t, err)
	a2, err := svc.Add(ctx, articleID, "dave", "reply a2", &a)
	require.NoError(t, err)
	a1x, err := svc.Add(ctx, articleID, "erin", "reply a1x", &a1)
	require.NoError(t, err)

	forest, err := svc.FetchTree(ctx, articleID)
	require.NoError(t, err)

	require.Len(t, forest, 2)
	assert.Equal(t, a, forest[0].ID)
	assert.Equal(t, b, forest[1].ID)
	assert.Empty(t, forest[1].Replies)

	require.Len(t, forest[0].Replies, 2)
	assert.Equal(t, a1, forest[0].Replies[0].ID)
	assert.Equal(t, a2, forest[0].Replies[1].ID)

	require.Len(t, forest[0].Replies[0].Replies, 1)
	assert.Equal(t, a1x, forest[0].Replies[0].Replies[0].ID)
}

func TestFetchTreeSiblingOrder(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	root, err := svc.Add(ctx, articleID, "alice", "root", nil)
	require.NoError(t, err)

	var want []int64
	for _, content := range []string{"one", "two", "three"} {
		id, err := svc.Add(ctx, articleID, "bob", content, &root)
		require.NoError(t, err)
		want = append(want, id)
	}

	forest, err := svc.FetchTree(ctx, articleID)
	require.NoError(t, err)
	require.Len(t, forest, 1)

	var got []int64
	for _, r := range forest[0].Replies {
		got = append(got, r.ID)
	}
	assert.Equal(t, want, got)
}

func TestFetchTreeUnknownArticle(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.FetchTree(context.Background(), int64(999))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeletePromotesSubtree(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	root, err := svc.Add(ctx, articleID, "alice", "root", nil)
	require.NoError(t, err)
	mid, err := svc.Add(ctx, articleID, "bob", "mid", &root)
	require.NoError(t, err)
	leaf, err := svc.Add(ctx, articleID, "carol", "leaf", &mid)
	require.NoError(t, err)
	otherRoot, err := svc.Add(ctx, articleID, "dave", "late root", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, mid, "bob"))

	forest, err := svc.FetchTree(ctx, articleID)
	require.NoError(t, err)

	// mid vanishes; leaf is promoted to the root level, after the
	// natural roots.
	require.Len(t, forest, 3)
	assert.Equal(t, root, forest[0].ID)
	assert.Equal(t, otherRoot, forest[1].ID)
	assert.Equal(t, leaf, forest[2].ID)
	assert.Empty(t, forest[0].Replies)

	// the promoted node still records who it replied to
	require.NotNil(t, forest[2].ParentID)
	assert.Equal(t, mid, *forest[2].ParentID)
}

func TestDeleteKeepsDeepSubtreeAttached(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	root, err := svc.Add(ctx, articleID, "alice", "root", nil)
	require.NoError(t, err)
	child, err := svc.Add(ctx, articleID, "bob", "child", &root)
	require.NoError(t, err)
	grand, err := svc.Add(ctx, articleID, "carol", "grand", &child)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, root, "alice"))

	forest, err := svc.FetchTree(ctx, articleID)
	require.NoError(t, err)

	// child moves up, grand stays under child
	require.Len(t, forest, 1)
	assert.Equal(t, child, forest[0].ID)
	require.Len(t, forest[0].Replies, 1)
	assert.Equal(t, grand, forest[0].Replies[0].ID)
}

func TestCountMatchesTree(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	root, err := svc.Add(ctx, articleID, "alice", "root", nil)
	require.NoError(t, err)
	mid, err := svc.Add(ctx, articleID, "bob", "mid", &root)
	require.NoError(t, err)
	_, err = svc.Add(ctx, articleID, "carol", "leaf", &mid)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, mid, "bob"))

	forest, err := svc.FetchTree(ctx, articleID)
	require.NoError(t, err)
	count, err := svc.Count(ctx, articleID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), count)
	assert.Equal(t, int(count), countForest(forest))
}

func countForest(forest []*domain.Comment) int {
	n := 0
	for _, c := range forest {
		n += 1 + countForest(c.Replies)
	}
	return n
}

func TestEdit(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	id, err := svc.Add(ctx, articleID, "alice", "draft", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Edit(ctx, id, "alice", "  final  "))

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "final", stored.Content)
	assert.NotNil(t, stored.UpdatedAt)
}

func TestEditNotAuthor(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	id, err := svc.Add(ctx, articleID, "alice", "mine", nil)
	require.NoError(t, err)

	err = svc.Edit(ctx, id, "mallory", "hijacked")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "mine", stored.Content)
	assert.Nil(t, stored.UpdatedAt)
}

func TestEditDeletedComment(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	id, err := svc.Add(ctx, articleID, "alice", "mine", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, id, "alice"))

	err = svc.Edit(ctx, id, "alice", "necromancy")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestEditBlankContent(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	id, err := svc.Add(ctx, articleID, "alice", "mine", nil)
	require.NoError(t, err)

	err = svc.Edit(ctx, id, "alice", "   ")
	assert.True(t, errors.Is(err, domain.ErrBadParamInput))

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "mine", stored.Content)
}

func TestEditMissingComment(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Edit(context.Background(), int64(404), "alice", "hello")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeleteNotAuthor(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	id, err := svc.Add(ctx, articleID, "alice", "mine", nil)
	require.NoError(t, err)

	err = svc.Delete(ctx, id, "mallory")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, stored.IsDeleted)
}

func TestDeleteTwice(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	id, err := svc.Add(ctx, articleID, "alice", "mine", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id, "alice"))
	require.NoError(t, svc.Delete(ctx, id, "alice"))

	count, err := svc.Count(ctx, articleID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteMissingComment(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Delete(context.Background(), int64(404), "alice")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
