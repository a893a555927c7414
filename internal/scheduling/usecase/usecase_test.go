package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-scheduling-assistant/internal/calendar"
	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/scheduling"
	"task-scheduling-assistant/internal/scheduling/repository"
)

const user = "telegram_42"

var sc = model.Scope{UserID: user}

func say(t *testing.T, env *testEnv, text string) scheduling.MessageOutput {
	t.Helper()
	out, err := env.uc.HandleMessage(context.Background(), sc, scheduling.MessageInput{Text: text})
	require.NoError(t, err)
	return out
}

func propose(t *testing.T, env *testEnv, taskID string) scheduling.ProposeOutput {
	t.Helper()
	out, err := env.uc.ProposeForTask(context.Background(), sc, scheduling.ProposeInput{TaskID: taskID})
	require.NoError(t, err)
	return out
}

// scheduleTask runs propose + "oui" and returns the stored event.
func scheduleTask(t *testing.T, env *testEnv, title string) (model.Task, model.ScheduledEvent) {
	t.Helper()
	task := env.createTask(t, user, title)
	require.True(t, propose(t, env, task.ID).Proposed)
	say(t, env, "oui")
	task = env.task(t, task.ID)
	return task, env.eventFor(t, user, task.ExternalEventID)
}

func TestWriteReportIsProposedAndConfirmed(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9), slotAt(19, 10), slotAt(20, 9))
	task := env.createTask(t, user, "Write report")

	out := propose(t, env, task.ID)
	require.True(t, out.Proposed)
	assert.Contains(t, out.Reply, `"Write report"`)
	assert.Contains(t, out.Reply, "lundi 19 oct. 09:00–10:00")
	assert.Contains(t, out.Reply, "(1h)")

	st, found := env.state(t, user)
	require.True(t, found)
	assert.Equal(t, model.StateAwaitingScheduleConfirmation, st.State())

	stored := env.task(t, task.ID)
	require.NotNil(t, stored.ProposedStart)
	assert.True(t, stored.ProposedStart.Equal(slotAt(19, 9).Start))

	reply := say(t, env, "Oui")
	assert.True(t, reply.Handled)
	assert.Empty(t, reply.State)
	assert.Contains(t, reply.Reply, "J'ai planifié")

	_, found = env.state(t, user)
	assert.False(t, found)

	stored = env.task(t, task.ID)
	assert.Equal(t, model.StatusScheduled, stored.SchedulingStatus)
	assert.Equal(t, "gcal-1", stored.ExternalEventID)
	require.NotNil(t, stored.ScheduledFor)
	assert.True(t, stored.ScheduledFor.Equal(slotAt(19, 9).Start))

	ev := env.eventFor(t, user, "gcal-1")
	assert.Equal(t, task.ID, ev.TaskID)
	assert.Equal(t, model.ResponsePending, ev.UserResponse)
	assert.True(t, ev.StartTime.Equal(slotAt(19, 9).Start))
	assert.True(t, ev.EndTime.Equal(slotAt(19, 9).End))

	created, updated := env.cal.counts()
	assert.Equal(t, 1, created)
	assert.Equal(t, 0, updated)
	assert.Equal(t, "Write report", env.cal.created[0].Title)
	assert.Equal(t, task.ID, env.cal.created[0].TaskID)
}

func TestOtherOptionsWithSingleSlot(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	task := env.createTask(t, user, "Call bank")
	propose(t, env, task.ID)
	before, _ := env.state(t, user)

	out := say(t, env, "autre")
	assert.Contains(t, out.Reply, "pas d'autre créneau")
	assert.Equal(t, model.StateAwaitingScheduleConfirmation, out.State)

	after, found := env.state(t, user)
	require.True(t, found)
	assert.Equal(t, before.Version, after.Version)
}

func TestSlotChoice(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9), slotAt(19, 10), slotAt(20, 9))
	task := env.createTask(t, user, "Gym")
	propose(t, env, task.ID)

	out := say(t, env, "autres options")
	assert.Equal(t, model.StateAwaitingSlotChoice, out.State)
	assert.Contains(t, out.Reply, "1. lundi 19 oct. 09:00–10:00")
	assert.Contains(t, out.Reply, "3. mardi 20 oct. 09:00–10:00")

	out = say(t, env, "7")
	assert.Equal(t, model.StateAwaitingSlotChoice, out.State)
	assert.Contains(t, out.Reply, "1 à 3")

	out = say(t, env, "pourquoi pas")
	assert.Equal(t, model.StateAwaitingSlotChoice, out.State)

	out = say(t, env, "2")
	assert.Empty(t, out.State)
	assert.Contains(t, out.Reply, "lundi 19 oct. 10:00–11:00")

	stored := env.task(t, task.ID)
	require.NotNil(t, stored.ScheduledFor)
	assert.True(t, stored.ScheduledFor.Equal(slotAt(19, 10).Start))
	assert.Equal(t, model.StatusScheduled, stored.SchedulingStatus)
}

func TestSlotChoiceCancel(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9), slotAt(19, 10))
	task := env.createTask(t, user, "Gym")
	propose(t, env, task.ID)
	say(t, env, "autre")

	out := say(t, env, "annuler")
	assert.Contains(t, out.Reply, "Annulé")
	_, found := env.state(t, user)
	assert.False(t, found)
	assert.Equal(t, model.StatusUnscheduled, env.task(t, task.ID).SchedulingStatus)
}

func TestDeclineLeavesTaskUnscheduled(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	task := env.createTask(t, user, "Read book")
	propose(t, env, task.ID)

	out := say(t, env, "pas maintenant")
	assert.Contains(t, out.Reply, "sans planification")

	_, found := env.state(t, user)
	assert.False(t, found)
	assert.Equal(t, model.StatusUnscheduled, env.task(t, task.ID).SchedulingStatus)
	created, _ := env.cal.counts()
	assert.Zero(t, created)
}

func TestUnrecognizedReplyKeepsState(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	task := env.createTask(t, user, "Read book")
	propose(t, env, task.ID)
	before, _ := env.state(t, user)

	out := say(t, env, "peut-être demain ?")
	assert.Contains(t, out.Reply, "lundi 19 oct. 09:00–10:00")
	assert.Equal(t, model.StateAwaitingScheduleConfirmation, out.State)

	after, _ := env.state(t, user)
	assert.Equal(t, before.Version, after.Version)
}

func TestIdleUserIsNotHandled(t *testing.T) {
	env := newTestEnv(t)
	out := say(t, env, "oui")
	assert.False(t, out.Handled)
	assert.Empty(t, out.Reply)

	_, err := env.uc.HandleMessage(context.Background(), model.Scope{}, scheduling.MessageInput{Text: "oui"})
	assert.ErrorIs(t, err, scheduling.ErrEmptyUser)
}

func TestProposeWithoutCalendar(t *testing.T) {
	env := newTestEnv(t)
	env.cal.disconnected = true
	task := env.createTask(t, user, "Write report")

	out := propose(t, env, task.ID)
	assert.False(t, out.Proposed)
	assert.Contains(t, out.Reply, "Connecte ton Google Calendar")
	_, found := env.state(t, user)
	assert.False(t, found)
}

func TestProposeWithoutCapacity(t *testing.T) {
	env := newTestEnv(t)
	task := env.createTask(t, user, "Write report")

	out := propose(t, env, task.ID)
	assert.False(t, out.Proposed)
	assert.Contains(t, out.Reply, "pas trouvé de créneau")
	_, found := env.state(t, user)
	assert.False(t, found)
}

func TestProposeUnknownTask(t *testing.T) {
	env := newTestEnv(t)
	other := env.createTask(t, "telegram_7", "Not yours")

	_, err := env.uc.ProposeForTask(context.Background(), sc, scheduling.ProposeInput{TaskID: other.ID})
	assert.ErrorIs(t, err, scheduling.ErrTaskNotFound)
	_, err = env.uc.ProposeForTask(context.Background(), sc, scheduling.ProposeInput{TaskID: "missing"})
	assert.ErrorIs(t, err, scheduling.ErrTaskNotFound)
}

func TestCalendarFailureClearsState(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	env.cal.createErr = errors.New("google down")
	task := env.createTask(t, user, "Write report")
	propose(t, env, task.ID)

	out := say(t, env, "ok")
	assert.Contains(t, out.Reply, "Erreur avec ton calendrier")
	_, found := env.state(t, user)
	assert.False(t, found)

	stored := env.task(t, task.ID)
	assert.Equal(t, model.StatusUnscheduled, stored.SchedulingStatus)
	assert.Empty(t, stored.ExternalEventID)
}

func TestMissingTaskClearsState(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.repo.SaveState(context.Background(), repository.SaveStateOptions{
		UserID:  user,
		Payload: model.ScheduleConfirmationPayload{TaskID: "deleted", Slots: []model.Slot{slotAt(19, 9)}},
	})
	require.NoError(t, err)

	out := say(t, env, "oui")
	assert.Contains(t, out.Reply, "Tâche introuvable")
	_, found := env.state(t, user)
	assert.False(t, found)
}

func TestSnoozeFromCompletionPrompt(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	task, ev := scheduleTask(t, env, "Write report")

	req, err := env.uc.RequestCompletion(context.Background(), sc, scheduling.CompletionInput{EventID: ev.ID})
	require.NoError(t, err)
	require.True(t, req.Requested)
	assert.Contains(t, req.Reply, `Tu as terminé "Write report"`)
	assert.NotNil(t, env.eventFor(t, user, ev.ExternalEventID).PostCheckSentAt)

	out := say(t, env, "+15")
	assert.Contains(t, out.Reply, "15 minutes")
	assert.Empty(t, out.State)

	moved := env.eventFor(t, user, ev.ExternalEventID)
	assert.True(t, moved.StartTime.Equal(testNow.Add(15*time.Minute)))
	assert.Equal(t, time.Hour, moved.Duration())
	assert.Equal(t, ev.RescheduledCount+1, moved.RescheduledCount)
	assert.Nil(t, moved.ReminderSentAt)
	assert.Nil(t, moved.PostCheckSentAt)
	assert.Equal(t, model.ResponseSnoozed, moved.UserResponse)

	stored := env.task(t, task.ID)
	assert.Equal(t, model.StatusSnoozed, stored.SchedulingStatus)
	require.NotNil(t, stored.ScheduledFor)
	assert.True(t, stored.ScheduledFor.Equal(moved.StartTime))

	_, updated := env.cal.counts()
	require.Equal(t, 1, updated)
	assert.Equal(t, ev.ExternalEventID, env.cal.updated[0].EventID)
	_, found := env.state(t, user)
	assert.False(t, found)
}

func TestProposeConfirmDoneRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	task, ev := scheduleTask(t, env, "Write report")

	_, err := env.uc.RequestCompletion(context.Background(), sc, scheduling.CompletionInput{EventID: ev.ID})
	require.NoError(t, err)

	out := say(t, env, "Terminé !")
	assert.Contains(t, out.Reply, "Bravo")

	_, found := env.state(t, user)
	assert.False(t, found)

	stored := env.task(t, task.ID)
	assert.True(t, stored.Completed)
	assert.Equal(t, model.StatusDone, stored.SchedulingStatus)
	done := env.eventFor(t, user, ev.ExternalEventID)
	assert.Equal(t, model.ResponseDone, done.UserResponse)
	assert.NotNil(t, done.PostCheckSentAt)
}

func TestNotDoneWithoutFutureSlots(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	task, ev := scheduleTask(t, env, "Write report")
	_, err := env.uc.RequestCompletion(context.Background(), sc, scheduling.CompletionInput{EventID: ev.ID})
	require.NoError(t, err)

	env.finder.set()
	out := say(t, env, "non")
	assert.Contains(t, out.Reply, "reste dans ta liste")
	assert.Empty(t, out.State)

	_, found := env.state(t, user)
	assert.False(t, found)
	assert.Equal(t, model.StatusNotDone, env.task(t, task.ID).SchedulingStatus)
	assert.Equal(t, model.ResponseNotDone, env.eventFor(t, user, ev.ExternalEventID).UserResponse)
}

func TestNotDoneReproposalMovesExistingEvent(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	task, ev := scheduleTask(t, env, "Write report")
	_, err := env.uc.RequestCompletion(context.Background(), sc, scheduling.CompletionInput{EventID: ev.ID})
	require.NoError(t, err)

	env.finder.set(slotAt(20, 15))
	out := say(t, env, "pas fait")
	assert.Equal(t, model.StateAwaitingScheduleConfirmation, out.State)
	assert.Contains(t, out.Reply, "mardi 20 oct. 15:00–16:00")

	say(t, env, "oui")

	created, updated := env.cal.counts()
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, updated)

	moved := env.eventFor(t, user, ev.ExternalEventID)
	assert.Equal(t, ev.ID, moved.ID)
	assert.True(t, moved.StartTime.Equal(slotAt(20, 15).Start))
	assert.Equal(t, model.ResponsePending, moved.UserResponse)
	assert.Equal(t, 1, moved.RescheduledCount)
	assert.Nil(t, moved.PostCheckSentAt)

	stored := env.task(t, task.ID)
	assert.Equal(t, model.StatusScheduled, stored.SchedulingStatus)
	assert.Equal(t, ev.ExternalEventID, stored.ExternalEventID)
}

func TestReproposalRecreatesDeletedEvent(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	task, ev := scheduleTask(t, env, "Write report")
	_, err := env.uc.RequestCompletion(context.Background(), sc, scheduling.CompletionInput{EventID: ev.ID})
	require.NoError(t, err)

	env.finder.set(slotAt(20, 15))
	say(t, env, "non")
	env.cal.updateErr = calendar.ErrEventNotFound
	say(t, env, "oui")

	created, _ := env.cal.counts()
	assert.Equal(t, 2, created)

	stored := env.task(t, task.ID)
	assert.Equal(t, "gcal-2", stored.ExternalEventID)
	assert.Equal(t, model.StatusScheduled, stored.SchedulingStatus)
	fresh := env.eventFor(t, user, "gcal-2")
	assert.NotEqual(t, ev.ID, fresh.ID)
	assert.True(t, fresh.StartTime.Equal(slotAt(20, 15).Start))
}

func TestRequestCompletionSkipsBusyUser(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	_, ev := scheduleTask(t, env, "Write report")

	other := env.createTask(t, user, "Call bank")
	propose(t, env, other.ID)

	out, err := env.uc.RequestCompletion(context.Background(), sc, scheduling.CompletionInput{EventID: ev.ID})
	require.NoError(t, err)
	assert.False(t, out.Requested)

	st, _ := env.state(t, user)
	assert.Equal(t, model.StateAwaitingScheduleConfirmation, st.State())
	assert.Nil(t, env.eventFor(t, user, ev.ExternalEventID).PostCheckSentAt)
}

func TestRequestCompletionForCompletedTask(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	task, ev := scheduleTask(t, env, "Write report")
	task.Completed = true
	require.NoError(t, env.repo.UpdateTask(context.Background(), task))

	out, err := env.uc.RequestCompletion(context.Background(), sc, scheduling.CompletionInput{EventID: ev.ID})
	require.NoError(t, err)
	assert.False(t, out.Requested)

	closed := env.eventFor(t, user, ev.ExternalEventID)
	assert.Equal(t, model.ResponseDone, closed.UserResponse)
	assert.NotNil(t, closed.PostCheckSentAt)
	assert.Equal(t, model.StatusDone, env.task(t, task.ID).SchedulingStatus)
	_, found := env.state(t, user)
	assert.False(t, found)
}

func TestRespondToEvent(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	task, ev := scheduleTask(t, env, "Write report")

	other := env.createTask(t, user, "Call bank")
	propose(t, env, other.ID)

	out, err := env.uc.RespondToEvent(context.Background(), sc, scheduling.RespondInput{
		EventID:       ev.ExternalEventID,
		Response:      model.ResponseSnoozed,
		SnoozeMinutes: 60,
	})
	require.NoError(t, err)
	assert.Contains(t, out.Reply, "60 minutes")
	assert.Equal(t, model.StateAwaitingScheduleConfirmation, out.State)

	st, found := env.state(t, user)
	require.True(t, found, "unrelated conversation must survive")
	assert.Equal(t, model.StateAwaitingScheduleConfirmation, st.State())

	out, err = env.uc.RespondToEvent(context.Background(), sc, scheduling.RespondInput{EventID: ev.ID, Response: model.ResponseDone})
	require.NoError(t, err)
	assert.Contains(t, out.Reply, "Bravo")
	assert.True(t, env.task(t, task.ID).Completed)

	_, err = env.uc.RespondToEvent(context.Background(), sc, scheduling.RespondInput{EventID: ev.ID, Response: "maybe"})
	assert.ErrorIs(t, err, scheduling.ErrInvalidResponse)
	_, err = env.uc.RespondToEvent(context.Background(), sc, scheduling.RespondInput{EventID: ev.ID, Response: model.ResponseSnoozed, SnoozeMinutes: 500})
	assert.ErrorIs(t, err, scheduling.ErrInvalidResponse)
	_, err = env.uc.RespondToEvent(context.Background(), sc, scheduling.RespondInput{EventID: "nope", Response: model.ResponseDone})
	assert.ErrorIs(t, err, scheduling.ErrEventNotFound)
}

func TestRespondToAnsweredEvent(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	task, ev := scheduleTask(t, env, "Write report")

	_, err := env.uc.RespondToEvent(context.Background(), sc, scheduling.RespondInput{EventID: ev.ID, Response: model.ResponseDone})
	require.NoError(t, err)

	for _, in := range []scheduling.RespondInput{
		{EventID: ev.ID, Response: model.ResponseSnoozed, SnoozeMinutes: 15},
		{EventID: ev.ID, Response: model.ResponseNotDone},
		{EventID: ev.ExternalEventID, Response: model.ResponseDone},
	} {
		_, err := env.uc.RespondToEvent(context.Background(), sc, in)
		assert.ErrorIs(t, err, scheduling.ErrEventClosed, in.Response)
	}

	_, updated := env.cal.counts()
	assert.Equal(t, 0, updated)

	stored := env.task(t, task.ID)
	assert.True(t, stored.Completed)
	assert.Equal(t, model.StatusDone, stored.SchedulingStatus)
	closed := env.eventFor(t, user, ev.ExternalEventID)
	assert.Equal(t, model.ResponseDone, closed.UserResponse)
	assert.Equal(t, 0, closed.RescheduledCount)
}

func TestRespondNotDoneKeepsOtherConversation(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	task, ev := scheduleTask(t, env, "Write report")

	env.finder.set(slotAt(20, 9), slotAt(20, 10))
	other := env.createTask(t, user, "Call bank")
	propose(t, env, other.ID)
	require.Equal(t, model.StateAwaitingSlotChoice, say(t, env, "autre").State)
	before, found := env.state(t, user)
	require.True(t, found)

	out, err := env.uc.RespondToEvent(context.Background(), sc, scheduling.RespondInput{EventID: ev.ID, Response: model.ResponseNotDone})
	require.NoError(t, err)
	assert.Contains(t, out.Reply, "reste dans ta liste")
	assert.Equal(t, model.StateAwaitingSlotChoice, out.State)

	after, found := env.state(t, user)
	require.True(t, found)
	assert.Equal(t, before.Version, after.Version)
	p, ok := after.Payload.(model.SlotChoicePayload)
	require.True(t, ok)
	assert.Equal(t, other.ID, p.TaskID)

	assert.Equal(t, model.StatusNotDone, env.task(t, task.ID).SchedulingStatus)
	assert.Equal(t, model.ResponseNotDone, env.eventFor(t, user, ev.ExternalEventID).UserResponse)

	// The other negotiation still completes.
	out = say(t, env, "2")
	assert.Empty(t, out.State)
	assert.Equal(t, model.StatusScheduled, env.task(t, other.ID).SchedulingStatus)
}

func TestConcurrentConfirmationsCreateOneEvent(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	task := env.createTask(t, user, "Write report")
	propose(t, env, task.ID)

	var wg sync.WaitGroup
	handled := make(chan bool, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := env.uc.HandleMessage(context.Background(), sc, scheduling.MessageInput{Text: "oui"})
			if err == nil {
				handled <- out.Handled
			}
		}()
	}
	wg.Wait()
	close(handled)

	n := 0
	for h := range handled {
		if h {
			n++
		}
	}
	assert.Equal(t, 1, n)
	created, _ := env.cal.counts()
	assert.Equal(t, 1, created)
	assert.Equal(t, model.StatusScheduled, env.task(t, task.ID).SchedulingStatus)
}

func TestStateConflictIsReported(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))
	task := env.createTask(t, user, "Write report")
	propose(t, env, task.ID)

	env.uc = env.build(conflictRepo{env.repo})
	out := say(t, env, "non")
	assert.Contains(t, out.Reply, "Réessaie")
	_, found := env.state(t, user)
	assert.True(t, found)
}

func TestCreateTask(t *testing.T) {
	env := newTestEnv(t)
	env.finder.set(slotAt(19, 9))

	out, err := env.uc.CreateTask(context.Background(), sc, scheduling.CreateTaskInput{
		Title:            "  Write report ",
		EstimatedMinutes: 90,
		Priority:         9,
		EnergyLevel:      -1,
		Deadline:         "demain",
	})
	require.NoError(t, err)
	assert.Equal(t, "Write report", out.Task.Title)
	assert.Equal(t, 4, out.Task.Priority)
	assert.Equal(t, 0, out.Task.EnergyLevel)
	require.NotNil(t, out.Task.Deadline)
	assert.True(t, out.Task.Deadline.After(testNow))
	assert.True(t, out.Proposal.Proposed)
	assert.Contains(t, out.Proposal.Reply, "1h30")

	_, err = env.uc.CreateTask(context.Background(), sc, scheduling.CreateTaskInput{Title: " "})
	assert.ErrorIs(t, err, scheduling.ErrEmptyTitle)
	_, err = env.uc.CreateTask(context.Background(), sc, scheduling.CreateTaskInput{Title: "x", Deadline: "someday"})
	assert.ErrorIs(t, err, scheduling.ErrInvalidDeadline)
}

func TestUpdatePreferences(t *testing.T) {
	env := newTestEnv(t)
	tz, lang, start := "America/New_York", "en", 9
	prefs, err := env.uc.UpdatePreferences(context.Background(), sc, scheduling.PreferencesInput{
		Timezone:    &tz,
		Language:    &lang,
		StartHour:   &start,
		AllowedDays: []int{5, 1, 1, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, prefs.AllowedDays)

	stored, err := env.repo.GetPreferences(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", stored.Timezone)
	assert.Equal(t, "en", stored.Language)
	assert.Equal(t, 9, stored.StartHour)
	assert.Equal(t, model.DefaultEndHour, stored.EndHour)

	var queued int
	require.NoError(t, env.db.Get(&queued, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND kind = ?`, user, model.KindPreferencesChanged))
	assert.Equal(t, 1, queued)

	bad := "Mars/Olympus"
	_, err = env.uc.UpdatePreferences(context.Background(), sc, scheduling.PreferencesInput{Timezone: &bad})
	assert.ErrorIs(t, err, scheduling.ErrInvalidPreferences)
	late := 30
	_, err = env.uc.UpdatePreferences(context.Background(), sc, scheduling.PreferencesInput{EndHour: &late})
	assert.ErrorIs(t, err, scheduling.ErrInvalidPreferences)
	_, err = env.uc.UpdatePreferences(context.Background(), sc, scheduling.PreferencesInput{AllowedDays: []int{}})
	assert.ErrorIs(t, err, scheduling.ErrInvalidPreferences)
}

func TestEnglishReplies(t *testing.T) {
	env := newTestEnv(t)
	lang := "en"
	_, err := env.uc.UpdatePreferences(context.Background(), sc, scheduling.PreferencesInput{Language: &lang})
	require.NoError(t, err)
	env.finder.set(slotAt(19, 9))
	task := env.createTask(t, user, "Write report")

	out := propose(t, env, task.ID)
	assert.Contains(t, out.Reply, "Here is a slot")
	assert.Contains(t, say(t, env, "no").Reply, "stays in your list")
}
