// Package distribution manages named recipient lists for bulk template
// sends. Lists live behind a Repository port: a gorm store for deployments
// and an in-memory store for tests.
package distribution

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"console-gateway/internal/models"

	"gorm.io/gorm"
)

const minNumberDigits = 10

var (
	ErrNotFound        = errors.New("distribution list not found")
	ErrDuplicateNumber = errors.New("number already in list")
)

// List is a distribution list with its numbers decoded.
type List struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Numbers   []string  `json:"numbers"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository is the persistence port. Every mutation is a whole-list
// read-modify-write; last writer wins, which is acceptable for a
// single-operator console.
type Repository interface {
	All() ([]List, error)
	Get(id uint) (*List, error)
	Create(name string) (*List, error)
	Delete(id uint) error
	AddNumber(id uint, number string) (*List, error)
	RemoveNumber(id uint, number string) (*List, error)
	AddNumbers(id uint, numbers []string) (*List, error)
}

// NormalizeNumber strips everything but digits and enforces the minimum
// length.
func NormalizeNumber(raw string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	number := b.String()
	if len(number) < minNumberDigits {
		return "", fmt.Errorf("number must contain at least %d digits", minNumberDigits)
	}
	return number, nil
}

// ParseNumbers reads one number per line (CSV import), normalizing and
// dropping invalid entries and duplicates within the input.
func ParseNumbers(r io.Reader) ([]string, error) {
	var numbers []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		number, err := NormalizeNumber(scanner.Text())
		if err != nil {
			continue
		}
		if seen[number] {
			continue
		}
		seen[number] = true
		numbers = append(numbers, number)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return numbers, nil
}

func decodeList(m models.DistributionList) List {
	numbers := []string{}
	if m.Numbers != "" {
		// Tolerate a corrupted column rather than failing the whole listing.
		_ = json.Unmarshal([]byte(m.Numbers), &numbers)
	}
	return List{ID: m.ID, Name: m.Name, Numbers: numbers, CreatedAt: m.CreatedAt}
}

func encodeNumbers(numbers []string) string {
	data, _ := json.Marshal(numbers)
	return string(data)
}

// GormStore persists lists through gorm.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) All() ([]List, error) {
	var rows []models.DistributionList
	if err := s.DB.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	lists := make([]List, len(rows))
	for i, row := range rows {
		lists[i] = decodeList(row)
	}
	return lists, nil
}

func (s *GormStore) Get(id uint) (*List, error) {
	var row models.DistributionList
	if err := s.DB.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	list := decodeList(row)
	return &list, nil
}

func (s *GormStore) Create(name string) (*List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("list name is required")
	}
	row := models.DistributionList{Name: name, Numbers: "[]"}
	if err := s.DB.Create(&row).Error; err != nil {
		return nil, err
	}
	list := decodeList(row)
	return &list, nil
}

func (s *GormStore) Delete(id uint) error {
	result := s.DB.Delete(&models.DistributionList{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) save(id uint, numbers []string) (*List, error) {
	if err := s.DB.Model(&models.DistributionList{}).Where("id = ?", id).
		Update("numbers", encodeNumbers(numbers)).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *GormStore) AddNumber(id uint, number string) (*List, error) {
	list, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	normalized, err := NormalizeNumber(number)
	if err != nil {
		return nil, err
	}
	for _, existing := range list.Numbers {
		if existing == normalized {
			return nil, ErrDuplicateNumber
		}
	}
	return s.save(id, append(list.Numbers, normalized))
}

func (s *GormStore) RemoveNumber(id uint, number string) (*List, error) {
	list, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	kept := make([]string, 0, len(list.Numbers))
	for _, existing := range list.Numbers {
		if existing != number {
			kept = append(kept, existing)
		}
	}
	return s.save(id, kept)
}

func (s *GormStore) AddNumbers(id uint, numbers []string) (*List, error) {
	list, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	merged := mergeNumbers(list.Numbers, numbers)
	return s.save(id, merged)
}

func mergeNumbers(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	merged := make([]string, 0, len(existing)+len(incoming))
	for _, n := range existing {
		seen[n] = true
		merged = append(merged, n)
	}
	for _, n := range incoming {
		if !seen[n] {
			seen[n] = true
			merged = append(merged, n)
		}
	}
	return merged
}

// MemoryStore is the test double for Repository.
type MemoryStore struct {
	mu     sync.Mutex
	nextID uint
	lists  map[uint]*List
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, lists: make(map[uint]*List)}
}

func (s *MemoryStore) All() ([]List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lists := make([]List, 0, len(s.lists))
	for _, l := range s.lists {
		lists = append(lists, *l)
	}
	return lists, nil
}

func (s *MemoryStore) Get(id uint) (*List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *l
	out.Numbers = append([]string(nil), l.Numbers...)
	return &out, nil
}

func (s *MemoryStore) Create(name string) (*List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("list name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := &List{ID: s.nextID, Name: name, Numbers: []string{}, CreatedAt: time.Now()}
	s.lists[l.ID] = l
	s.nextID++
	out := *l
	return &out, nil
}

func (s *MemoryStore) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[id]; !ok {
		return ErrNotFound
	}
	delete(s.lists, id)
	return nil
}

func (s *MemoryStore) AddNumber(id uint, number string) (*List, error) {
	normalized, err := NormalizeNumber(number)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[id]
	if !ok {
		return nil, ErrNotFound
	}
	for _, existing := range l.Numbers {
		if existing == normalized {
			return nil, ErrDuplicateNumber
		}
	}
	l.Numbers = append(l.Numbers, normalized)
	out := *l
	out.Numbers = append([]string(nil), l.Numbers...)
	return &out, nil
}

func (s *MemoryStore) RemoveNumber(id uint, number string) (*List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[id]
	if !ok {
		return nil, ErrNotFound
	}
	kept := make([]string, 0, len(l.Numbers))
	for _, existing := range l.Numbers {
		if existing != number {
			kept = append(kept, existing)
		}
	}
	l.Numbers = kept
	out := *l
	out.Numbers = append([]string(nil), l.Numbers...)
	return &out, nil
}

func (s *MemoryStore) AddNumbers(id uint, numbers []string) (*List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[id]
	if !ok {
		return nil, ErrNotFound
	}
	l.Numbers = mergeNumbers(l.Numbers, numbers)
	out := *l
	out.Numbers = append([]string(nil), l.Numbers...)
	return &out, nil
}
