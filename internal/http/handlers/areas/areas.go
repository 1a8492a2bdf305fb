// Package areas отдаёт данные разделов ролей. Данные демонстрационные,
// обработчики нужны как защищённые точки, которые проходят через проверку доступа.
package areas

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wellness-auth/internal/http/response"
)

// Analytics сводка для панели администратора.
type Analytics struct {
	ActiveStudents    int            `json:"active_students"`
	SessionsThisWeek  int            `json:"sessions_this_week"`
	AverageMoodScore  float64        `json:"average_mood_score"`
	ForumPostsFlagged int            `json:"forum_posts_flagged"`
	Engagement        map[string]int `json:"engagement"`
}

// CounselingSession запись в расписании консультанта.
type CounselingSession struct {
	ID        string    `json:"id"`
	Student   string    `json:"student"`
	StartsAt  time.Time `json:"starts_at"`
	Format    string    `json:"format"`
	Confirmed bool      `json:"confirmed"`
}

// QueueItem пост, ожидающий модерации.
type QueueItem struct {
	ID       string `json:"id"`
	Forum    string `json:"forum"`
	Excerpt  string `json:"excerpt"`
	Reported int    `json:"reported"`
}

// JournalEntry запись дневника студента.
type JournalEntry struct {
	ID      string    `json:"id"`
	Date    time.Time `json:"date"`
	Mood    string    `json:"mood"`
	Summary string    `json:"summary"`
}

// AdminAnalytics godoc
// @Summary Аналитика платформы
// @Tags Admin
// @Produce  json
// @Success 200 {object} response.Response{data=Analytics}
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /admin/analytics [get]
func AdminAnalytics(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(Analytics{
		ActiveStudents:    1243,
		SessionsThisWeek:  87,
		AverageMoodScore:  3.6,
		ForumPostsFlagged: 4,
		Engagement: map[string]int{
			"journal":  512,
			"forums":   301,
			"sessions": 87,
			"chat":     640,
		},
	}))
}

// CounselorSessions godoc
// @Summary Расписание консультанта
// @Tags Counselor
// @Produce  json
// @Success 200 {object} response.Response{data=[]CounselingSession}
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /counselor/sessions [get]
func CounselorSessions(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC().Truncate(24 * time.Hour)
	render.JSON(w, r, response.StatusOKWithData([]CounselingSession{
		{ID: "s-101", Student: "Student A", StartsAt: day.Add(10 * time.Hour), Format: "video", Confirmed: true},
		{ID: "s-102", Student: "Student B", StartsAt: day.Add(14 * time.Hour), Format: "in_person", Confirmed: false},
	}))
}

// ModeratorQueue godoc
// @Summary Очередь модерации
// @Tags Moderator
// @Produce  json
// @Success 200 {object} response.Response{data=[]QueueItem}
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /moderator/queue [get]
func ModeratorQueue(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData([]QueueItem{
		{ID: "p-31", Forum: "exam-stress", Excerpt: "Does anyone else feel...", Reported: 2},
		{ID: "p-47", Forum: "sleep", Excerpt: "Tips that worked for me", Reported: 1},
	}))
}

// StudentJournal godoc
// @Summary Дневник студента
// @Tags Student
// @Produce  json
// @Success 200 {object} response.Response{data=[]JournalEntry}
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /student/journal [get]
func StudentJournal(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC().Truncate(24 * time.Hour)
	render.JSON(w, r, response.StatusOKWithData([]JournalEntry{
		{ID: "j-1", Date: day, Mood: "calm", Summary: "Finished the lab report early."},
		{ID: "j-2", Date: day.AddDate(0, 0, -1), Mood: "anxious", Summary: "Worried about the midterm."},
	}))
}
