package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/perivihk-dotcom/client-intake/internal/models"
)

// ErrNotFound is returned when a delete targets an id that does not exist.
var ErrNotFound = errors.New("submission not found")

// CreateSubmission assigns the id and timestamp and persists the record.
// The input is written atomically; a submission is never partially stored.
func (s *Store) CreateSubmission(in *models.SubmissionInput) (*models.Submission, error) {
	sub := &models.Submission{
		ID:            uuid.New().String(),
		Name:          in.Name,
		BusinessName:  in.BusinessName,
		MobileNumber:  in.MobileNumber,
		Email:         in.Email,
		AgreedToTerms: in.AgreedToTerms,
		Timestamp:     time.Now().UTC(),
	}

	query := `
		INSERT INTO submissions (id, name, business_name, mobile_number, email, agreed_to_terms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.DB.Exec(query, sub.ID, sub.Name, sub.BusinessName, sub.MobileNumber, sub.Email, sub.AgreedToTerms, sub.Timestamp)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// GetAllSubmissions returns every submission, newest first.
func (s *Store) GetAllSubmissions() ([]models.Submission, error) {
	query := `
		SELECT id, name, business_name, mobile_number, email, agreed_to_terms, timestamp
		FROM submissions
		ORDER BY timestamp DESC
	`
	rows, err := s.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		var sub models.Submission
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.BusinessName, &sub.MobileNumber, &sub.Email, &sub.AgreedToTerms, &sub.Timestamp); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// DeleteSubmission removes one record by id.
func (s *Store) DeleteSubmission(id string) error {
	res, err := s.DB.Exec(`DELETE FROM submissions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CountSubmissions() (int, error) {
	var count int
	err := s.DB.QueryRow(`SELECT COUNT(*) FROM submissions`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
