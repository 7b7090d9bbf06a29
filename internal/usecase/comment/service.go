package comment

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"cryptoinsight/domain"
)

type service struct {
	commentRepo domain.CommentRepository
	bloomRepo   domain.BloomRepository
}

var _ domain.CommentUsecase = (*service)(nil)

func NewService(commentRepo domain.CommentRepository, bloomRepo domain.BloomRepository) *service {
	return &service{
		commentRepo: commentRepo,
		bloomRepo:   bloomRepo,
	}
}

// mustExists screens article ids through the bloom filter; the filter
// never reports a live article as missing, so a negative is final.
func (s *service) mustExists(ctx context.Context, articleID int64) error {
	exists, err := s.bloomRepo.Exists(ctx, articleID)
	if err != nil {
		// filter unavailable, let the DB be the judge
		logrus.Warnf("bloom filter check failed for article %d: %v", articleID, err)
		return nil
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

func (s *service) Add(ctx context.Context, articleID int64, username, content string, parentID *int64) (int64, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, domain.ErrBadParamInput
	}

	if err := s.mustExists(ctx, articleID); err != nil {
		return 0, err
	}

	if parentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *parentID)
		if err != nil {
			return 0, domain.ErrNotFound
		}
		// Replying across articles or under a deleted comment is
		// indistinguishable from a missing parent for the caller.
		if parent.ArticleID != articleID || parent.IsDeleted {
			return 0, domain.ErrNotFound
		}
	}

	c := &domain.Comment{
		ArticleID: articleID,
		Username:  username,
		Content:   content,
		ParentID:  parentID,
	}
	if err := s.commentRepo.Store(ctx, c); err != nil {
		return 0, err
	}
	return c.ID, nil
}

// FetchTree materializes the flat rows into an ordered forest. Two
// passes: index every node by id, then hang each node under its
// parent. A node whose parent is hidden (soft-deleted, so absent from
// the fetched rows) is promoted to the root level after the natural
// roots; its own subtree stays attached beneath it.
func (s *service) FetchTree(ctx context.Context, articleID int64) ([]*domain.Comment, error) {
	if err := s.mustExists(ctx, articleID); err != nil {
		return nil, err
	}

	flat, err := s.commentRepo.FetchByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	return buildForest(flat), nil
}

// buildForest expects flat to be ordered by created_at; sibling order
// falls out of the append order.
func buildForest(flat []*domain.Comment) []*domain.Comment {
	byID := make(map[int64]*domain.Comment, len(flat))
	for _, c := range flat {
		c.Replies = []*domain.Comment{}
		byID[c.ID] = c
	}

	roots := make([]*domain.Comment, 0, len(flat))
	var orphans []*domain.Comment
	for _, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, c)
		} else {
			orphans = append(orphans, c)
		}
	}

	return append(roots, orphans...)
}

func (s *service) Count(ctx context.Context, articleID int64) (int64, error) {
	return s.commentRepo.CountByArticle(ctx, articleID)
}

func (s *service) Edit(ctx context.Context, commentID int64, username, newContent string) error {
	newContent = strings.TrimSpace(newContent)
	if newContent == "" {
		return domain.ErrBadParamInput
	}

	c, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.IsDeleted {
		return domain.ErrNotFound
	}
	if c.Username != username {
		return domain.ErrForbidden
	}

	return s.commentRepo.UpdateContent(ctx, commentID, newContent, time.Now())
}

func (s *service) Delete(ctx context.Context, commentID int64, username string) error {
	c, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.Username != username {
		return domain.ErrForbidden
	}
	// deleting twice is a no-op success
	if c.IsDeleted {
		return nil
	}

	return s.commentRepo.MarkDeleted(ctx, commentID)
}
