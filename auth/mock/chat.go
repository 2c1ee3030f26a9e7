package mock

import (
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"net/http"
	"sort"
	"time"
)

const (
	defaultThreadID = "test_1"
	titleLength     = 30
)

type message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type thread struct {
	ID       string
	Owner    string
	Title    string
	Created  time.Time
	Messages []message
}

// Reply is the canned assistant answer for text.
func Reply(text string) string {
	return "Simon says: " + text
}

func (s *Service) ask(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(userKey).(*User)
	var request struct {
		Message  string `json:"message"`
		ThreadID string `json:"thread_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if request.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}
	if request.ThreadID == "" {
		request.ThreadID = defaultThreadID
	}
	reply := Reply(request.Message)
	s.mu.Lock()
	aThread, ok := s.threads[request.ThreadID]
	if !ok {
		title := []rune(request.Message)
		if len(title) > titleLength {
			title = title[:titleLength]
		}
		aThread = &thread{ID: request.ThreadID, Owner: user.Email, Title: string(title), Created: time.Now()}
		s.threads[request.ThreadID] = aThread
	}
	aThread.Messages = append(aThread.Messages, message{Sender: "user", Text: request.Message}, message{Sender: "ai", Text: reply})
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

func (s *Service) history(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(userKey).(*User)
	threadID := chi.URLParam(r, "threadID")
	s.mu.Lock()
	defer s.mu.Unlock()
	history := []message{}
	if aThread, ok := s.threads[threadID]; ok && aThread.Owner == user.Email {
		history = append(history, aThread.Messages...)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

func (s *Service) listThreads(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(userKey).(*User)
	type item struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	s.mu.Lock()
	var owned []*thread
	for _, aThread := range s.threads {
		if aThread.Owner == user.Email {
			owned = append(owned, aThread)
		}
	}
	s.mu.Unlock()
	sort.Slice(owned, func(i, j int) bool { return owned[i].Created.After(owned[j].Created) })
	items := []item{}
	for _, aThread := range owned {
		items = append(items, item{ID: aThread.ID, Title: aThread.Title})
	}
	writeJSON(w, http.StatusOK, items)
}

// protected echoes what the request carried; tests use it as a generic protected resource.
func (s *Service) protected(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"authorization": r.Header.Get("Authorization"),
		"retry":         r.Header.Get("X-Debug-Retry"),
	})
}
