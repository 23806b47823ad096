package core

import "fmt"

// DuplicateDateError reports that a record for Date already exists.
type DuplicateDateError struct {
	Date string
}

func (e *DuplicateDateError) Error() string {
	return fmt.Sprintf("an entry for %s already exists", e.Date)
}

func (e *DuplicateDateError) Is(target error) bool {
	return target == ErrDuplicateDate
}

// CheckUniqueness returns nil when no record in records has the candidate
// date, and a *DuplicateDateError otherwise.
func CheckUniqueness(candidateDate string, records []DailyRecord) error {
	return CheckUniquenessExcept(candidateDate, records, "")
}

// CheckUniquenessExcept is CheckUniqueness ignoring the record with ID
// excludeID, so an edited record does not conflict with itself. An empty
// excludeID excludes nothing.
func CheckUniquenessExcept(candidateDate string, records []DailyRecord, excludeID string) error {
	key := dateKey(candidateDate)
	for _, r := range records {
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if dateKey(r.Date) == key {
			return &DuplicateDateError{Date: key}
		}
	}
	return nil
}
