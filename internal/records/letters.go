package records

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"diario/internal/keyspace"
	"diario/internal/models"
	"diario/internal/validation"
)

// Classify derives a letter's status on the calendar day today. A read
// letter stays read; otherwise it is ready from its delivery date on.
func Classify(l models.FutureLetter, today string) models.LetterStatus {
	switch {
	case l.IsRead:
		return models.LetterRead
	case l.DeliveryDate <= today:
		return models.LetterReady
	default:
		return models.LetterScheduled
	}
}

type LetterView struct {
	models.FutureLetter
	Status models.LetterStatus `json:"status"`
}

// WriteLetter schedules a letter. The delivery date must be after today,
// and today must agree with the server clock to within a day.
func (s *Store) WriteLetter(ctx context.Context, userID, content, deliveryDate, today string) (LetterView, error) {
	if err := s.checkToday(today); err != nil {
		return LetterView{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return LetterView{}, &validation.Error{Field: "content", Message: "letter content is required"}
	}
	if _, err := validation.ParseDate("delivery_date", deliveryDate); err != nil {
		return LetterView{}, err
	}
	if deliveryDate <= today {
		return LetterView{}, &validation.Error{Field: "delivery_date", Message: "delivery date must be after today"}
	}
	key, err := keyspace.KeyFor(userID, keyspace.Letters)
	if err != nil {
		return LetterView{}, err
	}
	defer s.lock(userID)()

	letters, err := loadList[models.FutureLetter](ctx, s, key)
	if err != nil {
		return LetterView{}, err
	}
	l := models.FutureLetter{
		ID:           uuid.NewString(),
		UserID:       userID,
		Content:      content,
		DeliveryDate: deliveryDate,
		CreatedAt:    s.now(),
	}
	letters = append(letters, l)
	if err := saveList(ctx, s, key, letters); err != nil {
		return LetterView{}, err
	}
	return LetterView{FutureLetter: l, Status: Classify(l, today)}, nil
}

// Letters returns every letter with its status, earliest delivery first.
func (s *Store) Letters(ctx context.Context, userID, today string) ([]LetterView, error) {
	key, err := keyspace.KeyFor(userID, keyspace.Letters)
	if err != nil {
		return nil, err
	}
	letters, err := loadList[models.FutureLetter](ctx, s, key)
	if err != nil {
		return nil, err
	}
	out := make([]LetterView, 0, len(letters))
	for _, l := range letters {
		out = append(out, LetterView{FutureLetter: l, Status: Classify(l, today)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DeliveryDate < out[j].DeliveryDate })
	return out, nil
}

// ReadLetter opens a delivered letter. Reading is permanent and the first
// ReadAt is kept on repeated reads.
func (s *Store) ReadLetter(ctx context.Context, userID, letterID, today string) (LetterView, error) {
	if err := s.checkToday(today); err != nil {
		return LetterView{}, err
	}
	key, err := keyspace.KeyFor(userID, keyspace.Letters)
	if err != nil {
		return LetterView{}, err
	}
	defer s.lock(userID)()

	letters, err := loadList[models.FutureLetter](ctx, s, key)
	if err != nil {
		return LetterView{}, err
	}
	i := indexOf(letters, func(l models.FutureLetter) bool { return l.ID == letterID })
	if i < 0 {
		return LetterView{}, ErrNotFound
	}
	switch Classify(letters[i], today) {
	case models.LetterRead:
		return LetterView{FutureLetter: letters[i], Status: models.LetterRead}, nil
	case models.LetterScheduled:
		return LetterView{}, ErrLetterNotReady
	}
	now := s.now()
	letters[i].IsRead = true
	letters[i].ReadAt = &now
	if err := saveList(ctx, s, key, letters); err != nil {
		return LetterView{}, err
	}
	return LetterView{FutureLetter: letters[i], Status: models.LetterRead}, nil
}
