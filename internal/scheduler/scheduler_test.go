package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/libdesk/internal/config"
	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/service/reporting"
)

type staticDues []reporting.DuesRow

func (d staticDues) DuesTable() []reporting.DuesRow { return d }

type recordingNotifier struct {
	to   []string
	fail map[string]bool
}

func (n *recordingNotifier) Notify(_ context.Context, mobile, _ string) error {
	if n.fail[mobile] {
		return errors.New("undeliverable")
	}
	n.to = append(n.to, mobile)
	return nil
}

func TestRunOnceSkipsSettledStudents(t *testing.T) {
	dues := staticDues{
		{Mobile: "9988776655", FullName: "Ravi", Outstanding: 1000,
			DueMonths: []models.DueMonth{{YearMonth: models.YearMonth{Year: 2024, Month: 9}, Amount: 1000}}},
		{Mobile: "9876543210", FullName: "Pooja"},
		{Mobile: "9123456789", FullName: "Arun", Outstanding: 200, ReminderTotal: 200, Reminder: "Aug-24: 200"},
		{Mobile: "9000011111", FullName: "Meena", Outstanding: 700},
	}
	n := &recordingNotifier{fail: map[string]bool{"9000011111": true}}
	s := NewScheduler(config.ReminderConfig{CronSchedule: "0 9 5 * *"}, time.UTC, dues, n, nil)

	sent := s.RunOnce(context.Background())

	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"9988776655", "9123456789"}, n.to)
}

func TestRunOnceStopsWhenCancelled(t *testing.T) {
	n := &recordingNotifier{}
	s := NewScheduler(config.ReminderConfig{}, nil, staticDues{{Mobile: "9988776655", Outstanding: 10}}, n, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Zero(t, s.RunOnce(ctx))
	assert.Empty(t, n.to)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(config.ReminderConfig{CronSchedule: "not a schedule"}, time.UTC, staticDues{}, &recordingNotifier{}, nil)
	require.Error(t, s.Start())

	ok := NewScheduler(config.ReminderConfig{CronSchedule: "0 9 5 * *"}, time.UTC, staticDues{}, &recordingNotifier{}, nil)
	require.NoError(t, ok.Start())
	ok.Stop()
}
