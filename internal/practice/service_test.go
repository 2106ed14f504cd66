package practice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/examcoach/internal/catalog"
	"github.com/abhisek/examcoach/internal/coaching"
	"github.com/abhisek/examcoach/internal/examsim"
	"github.com/abhisek/examcoach/internal/history"
	"github.com/abhisek/examcoach/internal/spacedrep"
	"github.com/abhisek/examcoach/internal/store"
)

var testNow = time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC)

func sc() catalog.Body { return catalog.SingleChoice{Choices: []string{"a", "b"}} }

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	d := catalog.Data{
		Domains: []catalog.Domain{{ID: "d1", Title: "Networking"}, {ID: "d2", Title: "Security"}},
		Objectives: []catalog.Objective{
			{ID: "1.1", Title: "Ports", DomainID: "d1"},
			{ID: "2.1", Title: "Crypto", DomainID: "d2"},
		},
		Questions: []catalog.Question{
			{ID: "q-1", Body: sc(), ObjectiveIDs: []string{"1.1"}, Difficulty: 1, MisconceptionTags: []string{"udp-reliable"}},
			{ID: "q-2", Body: sc(), ObjectiveIDs: []string{"1.1"}, Difficulty: 2},
			{ID: "q-3", Body: sc(), ObjectiveIDs: []string{"2.1"}, Difficulty: 1, MisconceptionTags: []string{"hash-is-encryption"}},
			{ID: "q-4", Body: sc(), ObjectiveIDs: []string{"2.1"}, Difficulty: 2},
		},
		Policies: []catalog.Policy{
			{Version: "v1.0.0", Domains: map[string]float64{"d1": 0.5, "d2": 0.5}, TotalQuestions: 2, DurationMinutes: 30},
			{Version: "v2.0.0", Domains: map[string]float64{"d1": 1}, TotalQuestions: 2, DurationMinutes: 20},
		},
	}
	c, issues := catalog.New(d)
	if len(issues) != 0 {
		t.Fatalf("catalog issues: %v", issues)
	}
	return c
}

func newTestService(t *testing.T) (*Service, *fakeHistory, *fakePlans) {
	t.Helper()
	hist := newFakeHistory()
	plans := &fakePlans{}
	svc := New(testCatalog(t), hist, plans, WithClock(func() time.Time { return testNow }))
	return svc, hist, plans
}

func TestSubmitAnswer_ConfidentCorrectCreatesNoCard(t *testing.T) {
	svc, hist, _ := newTestService(t)

	res, err := svc.SubmitAnswer(context.Background(), Answer{ItemID: "q-1", Correct: true})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if res.Card != nil || res.Created {
		t.Errorf("card = %+v, created = %v; want none", res.Card, res.Created)
	}
	if res.Outcome != spacedrep.OutcomeCorrectConfident {
		t.Errorf("outcome = %s", res.Outcome)
	}
	if res.Stat.Attempts != 1 || res.Stat.Correct != 1 {
		t.Errorf("stat = %+v, want 1/1", res.Stat)
	}
	if res.Stat.LastAnsweredAt == nil || !res.Stat.LastAnsweredAt.Equal(testNow) {
		t.Errorf("last answered = %v, want %v", res.Stat.LastAnsweredAt, testNow)
	}
	if len(hist.cards) != 0 {
		t.Errorf("stored cards = %d, want 0", len(hist.cards))
	}
	if len(hist.sessions) != 1 || len(hist.sessions[0].Entries) != 1 {
		t.Fatalf("sessions = %+v, want one session with one entry", hist.sessions)
	}
	if e := hist.sessions[0].Entries[0]; e.CardID != "" || e.ItemID != "q-1" {
		t.Errorf("entry = %+v", e)
	}
}

func TestSubmitAnswer_WrongCreatesCard(t *testing.T) {
	svc, hist, _ := newTestService(t)

	res, err := svc.SubmitAnswer(context.Background(), Answer{ItemID: "q-3"})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !res.Created || res.Card == nil {
		t.Fatalf("expected a new card, got %+v", res)
	}
	if res.Card.Status != history.StatusWrong {
		t.Errorf("status = %s, want wrong", res.Card.Status)
	}
	if res.Card.Interval != spacedrep.InitialWrongInterval {
		t.Errorf("interval = %d", res.Card.Interval)
	}
	if !res.Card.HasMisconception("hash-is-encryption") {
		t.Errorf("card tags = %v", res.Card.MisconceptionTags)
	}
	if res.Stat.Due == nil || !res.Stat.Due.Equal(res.Card.Due) {
		t.Errorf("stat due = %v, card due = %v", res.Stat.Due, res.Card.Due)
	}
	if _, ok := hist.cards["q-3"]; !ok {
		t.Error("card not stored")
	}
}

func TestSubmitAnswer_UnsureCreatesUnsureCard(t *testing.T) {
	svc, _, _ := newTestService(t)

	res, err := svc.SubmitAnswer(context.Background(), Answer{ItemID: "q-2", Correct: true, Unsure: true})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if res.Card == nil || res.Card.Status != history.StatusUnsure {
		t.Fatalf("card = %+v, want unsure card", res.Card)
	}
	if res.Card.Interval != spacedrep.InitialUnsureInterval {
		t.Errorf("interval = %d", res.Card.Interval)
	}
}

func TestSubmitAnswer_ReviewsExistingCard(t *testing.T) {
	svc, hist, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.SubmitAnswer(ctx, Answer{ItemID: "q-1"})
	if err != nil {
		t.Fatalf("first answer: %v", err)
	}
	second, err := svc.SubmitAnswer(ctx, Answer{ItemID: "q-1", Correct: true, SessionID: first.SessionID})
	if err != nil {
		t.Fatalf("second answer: %v", err)
	}
	if second.Created {
		t.Error("second answer should review, not create")
	}
	if second.Card.Due.Before(first.Card.Due) {
		t.Errorf("due moved earlier: %v -> %v", first.Card.Due, second.Card.Due)
	}
	if second.Card.Interval <= first.Card.Interval {
		t.Errorf("interval %d -> %d, want growth", first.Card.Interval, second.Card.Interval)
	}
	if second.Stat.Attempts != 2 || second.Stat.Correct != 1 {
		t.Errorf("stat = %+v", second.Stat)
	}
	if len(hist.sessions) != 1 || len(hist.sessions[0].Entries) != 2 {
		t.Errorf("sessions = %+v, want both entries in one session", hist.sessions)
	}
}

func TestSubmitAnswer_UnknownItem(t *testing.T) {
	svc, hist, _ := newTestService(t)

	_, err := svc.SubmitAnswer(context.Background(), Answer{ItemID: "nope"})
	if !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("err = %v, want ErrUnknownItem", err)
	}
	if len(hist.recorded) != 0 {
		t.Error("nothing should be recorded")
	}
}

func TestSubmitAnswer_SnapshotError(t *testing.T) {
	svc, hist, _ := newTestService(t)
	hist.failErr = errBoom

	if _, err := svc.SubmitAnswer(context.Background(), Answer{ItemID: "q-1"}); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want wrapped errBoom", err)
	}
}

func TestMastery_ReflectsAnswers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.SubmitAnswer(ctx, Answer{ItemID: "q-3", Correct: true}); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := svc.Mastery(ctx)
	if err != nil {
		t.Fatalf("Mastery: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	byID := map[string]float64{}
	for _, r := range rows {
		byID[r.ID] = r.Mastery
	}
	if byID["1.1"] != 0 {
		t.Errorf("unattempted mastery = %v, want 0", byID["1.1"])
	}
	if byID["2.1"] <= 0 {
		t.Errorf("attempted mastery = %v, want > 0", byID["2.1"])
	}
}

func TestMisconceptions_RanksMissedTagFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.SubmitAnswer(ctx, Answer{ItemID: "q-1", Correct: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitAnswer(ctx, Answer{ItemID: "q-3"}); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Misconceptions(ctx)
	if err != nil {
		t.Fatalf("Misconceptions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("priorities = %d, want 2", len(got))
	}
	if got[0].Tag != "hash-is-encryption" {
		t.Errorf("top tag = %s, want hash-is-encryption", got[0].Tag)
	}
}

func TestNext_EchoesCoachingPlan(t *testing.T) {
	svc, _, plans := newTestService(t)
	ctx := context.Background()

	plan, err := svc.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if plan.Empty() {
		t.Fatal("expected a plan")
	}
	echo, err := svc.LastPlan(ctx, KindCoaching)
	if err != nil {
		t.Fatalf("LastPlan: %v", err)
	}
	if echo.PlanID != plan.ID {
		t.Errorf("echo plan id = %s, want %s", echo.PlanID, plan.ID)
	}
	var decoded coaching.Plan
	if err := echo.Decode(&decoded); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.ID != plan.ID || len(decoded.QuestionIDs) != len(plan.QuestionIDs) {
		t.Errorf("decoded = %+v, want %+v", decoded, plan)
	}
	if len(plans.echoes) != 1 {
		t.Errorf("echoes = %d, want 1", len(plans.echoes))
	}
}

func TestPlansByObjective_WeakestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if _, err := svc.SubmitAnswer(ctx, Answer{ItemID: "q-1", Correct: true}); err != nil {
			t.Fatal(err)
		}
	}

	plans, err := svc.PlansByObjective(ctx, 0)
	if err != nil {
		t.Fatalf("PlansByObjective: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("plans = %d, want 2", len(plans))
	}
	if plans[0].ObjectiveID != "2.1" || plans[1].ObjectiveID != "1.1" {
		t.Errorf("order = [%s %s], want [2.1 1.1]", plans[0].ObjectiveID, plans[1].ObjectiveID)
	}

	top, err := svc.PlansByObjective(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].ObjectiveID != "2.1" {
		t.Errorf("limited plans = %+v", top)
	}
}

func TestQueue_DueCardsOnly(t *testing.T) {
	svc, hist, _ := newTestService(t)
	hist.cards["q-1"] = history.MistakeCard{ID: "card-q-1", ItemID: "q-1", Status: history.StatusWrong,
		ObjectiveIDs: []string{"1.1"}, Due: testNow.Add(-24 * time.Hour), Interval: 1, Ease: 2.1}
	hist.cards["q-3"] = history.MistakeCard{ID: "card-q-3", ItemID: "q-3", Status: history.StatusUnsure,
		ObjectiveIDs: []string{"2.1"}, Due: testNow.Add(48 * time.Hour), Interval: 2, Ease: 2.3}

	due, err := svc.Queue(context.Background(), QueueRequest{})
	if err != nil {
		t.Fatalf("Queue: %v", err)
	}
	if len(due) != 1 || due[0].CardID != "card-q-1" {
		t.Errorf("due queue = %+v", due)
	}

	all, err := svc.Queue(context.Background(), QueueRequest{IncludeUpcoming: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("queue with upcoming = %d entries, want 2", len(all))
	}
}

func TestExam_PolicyResolution(t *testing.T) {
	svc, _, plans := newTestService(t)
	ctx := context.Background()

	latest, err := svc.Exam(ctx, ExamRequest{Seed: "s"})
	if err != nil {
		t.Fatalf("Exam latest: %v", err)
	}
	if latest.PolicyVersion != "v2.0.0" {
		t.Errorf("policy = %s, want v2.0.0", latest.PolicyVersion)
	}
	for _, it := range latest.Items {
		if it.DomainID != "d1" {
			t.Errorf("item %s from %s, want d1 only", it.QuestionID, it.DomainID)
		}
	}

	older, err := svc.Exam(ctx, ExamRequest{Seed: "s", PolicyVersion: "1.0.0"})
	if err != nil {
		t.Fatalf("Exam by version: %v", err)
	}
	if older.PolicyVersion != "v1.0.0" {
		t.Errorf("policy = %s, want v1.0.0", older.PolicyVersion)
	}

	explicit := catalog.Policy{Version: "v9.0.0", Domains: map[string]float64{"d2": 1, "zz": 1}, TotalQuestions: 1}
	custom, err := svc.Exam(ctx, ExamRequest{Seed: "s", Policy: &explicit, PolicyVersion: "v1.0.0"})
	if err != nil {
		t.Fatalf("Exam explicit: %v", err)
	}
	if custom.PolicyVersion != "v9.0.0" || custom.TotalQuestions != 1 {
		t.Errorf("custom = %+v", custom)
	}

	if _, err := svc.Exam(ctx, ExamRequest{PolicyVersion: "v7"}); !errors.Is(err, catalog.ErrNoPolicy) {
		t.Errorf("unknown version err = %v, want ErrNoPolicy", err)
	}

	if n := len(plans.echoes); n != 3 {
		t.Errorf("exam echoes = %d, want 3", n)
	}
	echo, err := svc.LastPlan(ctx, KindExam)
	if err != nil {
		t.Fatal(err)
	}
	var decoded examsim.Plan
	if err := echo.Decode(&decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.ID != custom.ID {
		t.Errorf("latest echo = %s, want %s", decoded.ID, custom.ID)
	}
}

func TestExam_DeterministicForSeed(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Exam(ctx, ExamRequest{Seed: "fixed", PolicyVersion: "v1.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Exam(ctx, ExamRequest{Seed: "fixed", PolicyVersion: "v1.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != b.ID {
		t.Errorf("ids differ: %s vs %s", a.ID, b.ID)
	}
	ai, bi := a.QuestionIDs(), b.QuestionIDs()
	if len(ai) != len(bi) {
		t.Fatalf("lengths differ: %v vs %v", ai, bi)
	}
	for i := range ai {
		if ai[i] != bi[i] {
			t.Errorf("item %d: %s vs %s", i, ai[i], bi[i])
		}
	}
}

func TestLastPlan_WithoutPlanRepo(t *testing.T) {
	svc := New(testCatalog(t), newFakeHistory(), nil, WithClock(func() time.Time { return testNow }))
	if _, err := svc.Next(context.Background()); err != nil {
		t.Fatalf("Next without plan repo: %v", err)
	}
	if _, err := svc.LastPlan(context.Background(), KindCoaching); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
