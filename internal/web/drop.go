package web

import (
	"encoding/json"
	"net/http"
	"time"

	appLog "dayflow/internal/log"
	"dayflow/internal/plan"
	"dayflow/internal/timeline"
)

// dropRequest is the wire form of a completed drag gesture: the dragged
// item and the (participant, slot) cell it was released on. A missing
// target means the pointer landed outside the grid and the gesture is a
// silent cancel.
type dropRequest struct {
	ItemID string `json:"item_id"`
	Day    string `json:"day"`

	Target *struct {
		ParticipantID string `json:"participant_id"`
		SlotMinute    int    `json:"slot_minute"`
	} `json:"target"`
}

type dropResponse struct {
	Rescheduled bool `json:"rescheduled"`
	Reassigned  bool `json:"reassigned"`
}

// handleDrop interprets a drop against the current plan and persists the
// implied updates. Calendar events are rejected before a session starts;
// no-op drops write nothing.
func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}

	loc := resolveLocationOrLocal(s.cfg.Timezone)
	day := time.Now().In(loc)
	if req.Day != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Day, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid day, want YYYY-MM-DD")
			return
		}
		day = parsed
	}

	p, err := plan.Load(s.cfg.PlanPath)
	if err != nil {
		appLog.Error("drop: plan load failed", err, "path", s.cfg.PlanPath)
		writeError(w, http.StatusInternalServerError, "failed to load plan")
		return
	}

	item, ok := planItem(p, req.ItemID, day)
	if !ok {
		writeError(w, http.StatusNotFound, "item not found in plan")
		return
	}

	session := timeline.NewDragSession()
	if err := session.Begin(item); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var resp dropResponse
	dirty := false
	intents := timeline.Intents{
		OnReschedule: func(itemID string, newStartMinute int) {
			if applyReschedule(p, itemID, day, newStartMinute) {
				resp.Rescheduled = true
				dirty = true
			}
		},
		OnReassign: func(itemID, participantID string) {
			if applyReassign(p, itemID, participantID) {
				resp.Reassigned = true
				dirty = true
			}
		},
	}

	var target *timeline.DropTarget
	if req.Target != nil {
		target = &timeline.DropTarget{
			ParticipantID: req.Target.ParticipantID,
			SlotMinute:    req.Target.SlotMinute,
		}
	}

	if err := session.Drop(target, intents); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if dirty {
		if err := plan.Save(s.cfg.PlanPath, p); err != nil {
			appLog.Error("drop: plan save failed", err, "path", s.cfg.PlanPath)
			writeError(w, http.StatusInternalServerError, "failed to save plan")
			return
		}
		s.invalidateLayouts()
	}

	writeJSON(w, http.StatusOK, resp)
}

// toggleRequest marks a task or routine complete / not complete.
type toggleRequest struct {
	ItemID string `json:"item_id"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, err := plan.Load(s.cfg.PlanPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load plan")
		return
	}

	toggled := false
	if t := p.FindTask(req.ItemID); t != nil {
		t.Completed = !t.Completed
		toggled = true
	} else if rt := p.FindRoutine(req.ItemID); rt != nil {
		rt.Completed = !rt.Completed
		toggled = true
	}
	if !toggled {
		writeError(w, http.StatusNotFound, "item not found in plan")
		return
	}

	if err := plan.Save(s.cfg.PlanPath, p); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save plan")
		return
	}
	s.invalidateLayouts()

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// planItem builds the normalized view of a plan record so a drag session
// can be validated against it.
func planItem(p *plan.Plan, id string, day time.Time) (timeline.TimedItem, bool) {
	if t := p.FindTask(id); t != nil {
		start := 0
		if t.ScheduledFor != nil {
			sched := t.ScheduledFor.In(day.Location())
			start = sched.Hour()*60 + sched.Minute()
		}
		return timeline.TimedItem{
			ID:             t.ID,
			Kind:           timeline.KindTask,
			Title:          t.Title,
			StartMinute:    start,
			OwnerID:        t.ParticipantID,
			ParticipantIDs: []string{t.ParticipantID},
			SourceID:       t.ID,
			Draggable:      true,
		}, true
	}
	if rt := p.FindRoutine(id); rt != nil {
		start := rt.TimeOfDayMin
		if start < 0 {
			start = 0
		}
		return timeline.TimedItem{
			ID:             rt.ID,
			Kind:           timeline.KindRoutine,
			Title:          rt.Title,
			StartMinute:    start,
			OwnerID:        rt.ParticipantID,
			ParticipantIDs: []string{rt.ParticipantID},
			SourceID:       rt.ID,
			Draggable:      true,
		}, true
	}
	return timeline.TimedItem{}, false
}

func applyReschedule(p *plan.Plan, itemID string, day time.Time, newStartMinute int) bool {
	if t := p.FindTask(itemID); t != nil {
		loc := day.Location()
		sched := time.Date(day.Year(), day.Month(), day.Day(), newStartMinute/60, newStartMinute%60, 0, 0, loc)
		t.ScheduledFor = &sched
		t.AllDay = false
		return true
	}
	if rt := p.FindRoutine(itemID); rt != nil {
		rt.TimeOfDayMin = newStartMinute
		return true
	}
	return false
}

func applyReassign(p *plan.Plan, itemID, participantID string) bool {
	if t := p.FindTask(itemID); t != nil {
		t.ParticipantID = participantID
		return true
	}
	if rt := p.FindRoutine(itemID); rt != nil {
		rt.ParticipantID = participantID
		return true
	}
	return false
}

// invalidateLayouts drops every cached layout after a plan mutation.
func (s *Server) invalidateLayouts() {
	s.layoutMu.Lock()
	s.layoutCache = make(map[string]*layoutEntry)
	s.layoutMu.Unlock()
}
