package main

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"ovxassist-backend/lib/gradestore"
	"ovxassist-backend/lib/mailer"
	"ovxassist-backend/lib/scrapers/omnivox"
	"ovxassist-backend/lib/scrapers/omnivox/lea"
	"ovxassist-backend/lib/textutil"
	"ovxassist-backend/lib/timezone"
)

type Service struct {
	config   Config
	store    gradestore.Store
	mailer   mailer.Mailer
	sessions *expirable.LRU[string, *omnivox.Client]
	// new-document counts per class seen on the previous poll,
	// keyed by student id
	lastNewDocs map[string]map[string]int
}

func NewService(config Config, store gradestore.Store, sender mailer.Mailer) *Service {
	if len(config.SnapshotHours) == 0 {
		config.SnapshotHours = []int{10, 18}
	}
	return &Service{
		config:      config,
		store:       store,
		mailer:      sender,
		sessions:    expirable.NewLRU[string, *omnivox.Client](2048, nil, time.Minute*15),
		lastNewDocs: map[string]map[string]int{},
	}
}

func (s *Service) client(ctx context.Context, student StudentConfig) (*omnivox.Client, error) {
	cached, hit := s.sessions.Get(student.StudentId)
	if hit {
		return cached, nil
	}

	client, err := omnivox.NewClient(ctx, omnivox.Options{
		StudentId:  student.StudentId,
		Password:   student.Password,
		BaseUrl:    s.config.BaseUrl,
		LeaBaseUrl: s.config.LeaBaseUrl,
	})
	if err != nil {
		return nil, err
	}

	s.sessions.Add(student.StudentId, client)
	return client, nil
}

func (s *Service) daemon(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := timezone.Now()
			if !slices.Contains(s.config.SnapshotHours, now.Hour()) {
				continue
			}
			s.poll(ctx)
		}
	}
}

func (s *Service) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Hour)
	defer cancel()

	var userSnapshots []gradestore.UserSnapshot

	// one portal session at a time, keeps memory and the portal's
	// patience in check
	for _, student := range s.config.Students {
		snapshot, err := s.pollStudent(ctx, student)
		if err != nil {
			slog.WarnContext(ctx, "poll student", "student", student.StudentId, "err", err)
			continue
		}
		userSnapshots = append(userSnapshots, snapshot)
	}
	if len(userSnapshots) == 0 {
		return
	}

	err := s.store.Push(ctx, gradestore.PushRequest{
		Time:  timezone.Now(),
		Users: userSnapshots,
	})
	if err != nil {
		slog.ErrorContext(ctx, "push grade snapshots", "err", err)
	}
}

func (s *Service) pollStudent(ctx context.Context, student StudentConfig) (gradestore.UserSnapshot, error) {
	client, err := s.client(ctx, student)
	if err != nil {
		return gradestore.UserSnapshot{}, err
	}

	classes, err := client.Lea.Classes(ctx, true)
	if err != nil {
		// the session may have gone stale, drop it so the next poll
		// logs in from scratch
		s.sessions.Remove(student.StudentId)
		return gradestore.UserSnapshot{}, err
	}

	var courseSnapshots []gradestore.CourseSnapshot
	for _, class := range classes {
		if class.Grade == "" {
			continue
		}
		value := textutil.SafeFloat(strings.TrimSuffix(class.Grade, "%"), -1)
		if value < 0 {
			continue
		}
		courseSnapshots = append(courseSnapshots, gradestore.CourseSnapshot{
			Course: class.Code,
			Value:  value,
		})
	}

	s.alertNewDocuments(ctx, student, client, classes)

	return gradestore.UserSnapshot{
		User:    student.StudentId,
		Courses: courseSnapshots,
	}, nil
}

// the summary page and the card page render course names with
// different whitespace, comparing normalized names bridges the two
func findSummary(summaries []lea.DocumentSummary, class lea.Class) (lea.DocumentSummary, bool) {
	code := textutil.NormalizeName(class.Code)
	title := textutil.NormalizeName(class.Title)
	for _, summary := range summaries {
		name := textutil.NormalizeName(summary.Name)
		if code != "" && strings.Contains(name, code) {
			return summary, true
		}
		if title != "" && strings.Contains(name, title) {
			return summary, true
		}
	}
	return lea.DocumentSummary{}, false
}

func unviewedDocuments(categories []lea.Category) []lea.Document {
	var docs []lea.Document
	for _, category := range categories {
		for _, doc := range category.Documents {
			if doc.Viewed {
				continue
			}
			docs = append(docs, doc)
		}
	}
	return docs
}

func (s *Service) alertNewDocuments(ctx context.Context, student StudentConfig, client *omnivox.Client, classes []lea.Class) {
	if student.AlertEmail == "" {
		return
	}

	previous := s.lastNewDocs[student.StudentId]
	current := make(map[string]int, len(classes))
	for _, class := range classes {
		current[class.Code] = class.NewDocuments
	}
	s.lastNewDocs[student.StudentId] = current

	if previous == nil {
		// first poll for this student, nothing to compare against
		return
	}

	var affected []lea.Class
	for _, class := range classes {
		if class.NewDocuments > previous[class.Code] {
			affected = append(affected, class)
		}
	}
	if len(affected) == 0 {
		return
	}

	summaries, err := client.Lea.DocumentSummaries(ctx, true)
	if err != nil {
		slog.WarnContext(ctx, "list document summaries", "student", student.StudentId, "err", err)
		return
	}

	for _, class := range affected {
		summary, ok := findSummary(summaries, class)
		if !ok {
			slog.WarnContext(ctx, "no document summary for class", "class", class.Code)
			continue
		}

		categories, err := client.Lea.ClassDocuments(ctx, summary.Href)
		if err != nil {
			slog.WarnContext(ctx, "list class documents", "class", class.Code, "err", err)
			continue
		}

		docs := unviewedDocuments(categories)
		if len(docs) == 0 {
			continue
		}

		err = s.mailer.SendDocumentAlert(ctx, student.AlertEmail, class.Title, docs)
		if err != nil {
			slog.WarnContext(ctx, "send document alert", "class", class.Code, "err", err)
			continue
		}
		slog.InfoContext(
			ctx, "sent document alert",
			"student", student.StudentId,
			"class", class.Code,
			"documents", len(docs),
		)
	}
}
