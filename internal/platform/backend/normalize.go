package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/athena-learn/athena-web/internal/domain"
)

// object is a decoded JSON object whose fields are looked up by any of
// several accepted spellings.
type object map[string]json.RawMessage

func decodeObject(raw json.RawMessage) (object, error) {
	if isNull(raw) {
		return nil, nil
	}
	var o object
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("%w: expected object: %v", domain.ErrServer, err)
	}
	return o, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// lookup returns the first present, non-null field among names.
func (o object) lookup(names ...string) (json.RawMessage, bool) {
	for _, name := range names {
		if raw, ok := o[name]; ok && !isNull(raw) {
			return raw, true
		}
	}
	return nil, false
}

// has reports whether any of names is present, even with a null value.
func (o object) has(names ...string) bool {
	for _, name := range names {
		if _, ok := o[name]; ok {
			return true
		}
	}
	return false
}

func (o object) str(names ...string) string {
	s, _ := o.optStr(names...)
	if s == nil {
		return ""
	}
	return *s
}

// optStr returns nil when the field is absent, null or blank.
func (o object) optStr(names ...string) (*string, bool) {
	raw, ok := o.lookup(names...)
	if !ok {
		return nil, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// numbers and booleans are rendered as their JSON text
		s = strings.Trim(string(bytes.TrimSpace(raw)), `"`)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	return &s, true
}

func (o object) id(names ...string) int64 {
	raw, ok := o.lookup(names...)
	if !ok {
		return 0
	}
	n, _ := parseInt(raw)
	return n
}

func (o object) optInt(names ...string) *int {
	raw, ok := o.lookup(names...)
	if !ok {
		return nil
	}
	n, ok := parseInt(raw)
	if !ok {
		return nil
	}
	v := int(n)
	return &v
}

func (o object) time(names ...string) time.Time {
	s := o.str(names...)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseInt accepts 12, 12.0 and "12".
func parseInt(raw json.RawMessage) (int64, bool) {
	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		num = t
	case string:
		num = json.Number(strings.TrimSpace(t))
	default:
		return 0, false
	}
	if n, err := num.Int64(); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(string(num), 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

func decodeList(raw json.RawMessage) ([]json.RawMessage, error) {
	if isNull(raw) {
		return nil, nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: expected list: %v", domain.ErrServer, err)
	}
	return list, nil
}

// normalizeProfile maps every known profile spelling onto domain.Profile.
func normalizeProfile(o object, fallbackUserID int64) domain.Profile {
	p := domain.Profile{
		UserID: o.id("user_id", "userId", "userid", "user"),
	}
	if p.UserID == 0 {
		p.UserID = fallbackUserID
	}
	p.LearningStyle, _ = o.optStr("learning_style", "learningStyle", "learningstyle")
	p.RecommendedFormat, _ = o.optStr("recommended_format", "recommendedFormat", "recommendedformat")
	p.RecommendedPace, _ = o.optStr("recommended_pace", "recommendedPace", "recommendedpace", "recommended_pace_description")
	p.StrategySummary, _ = o.optStr("strategy_summary", "strategySummary", "strategysummary")
	p.Goals, _ = o.optStr("goals")
	p.Interests, _ = o.optStr("interests")

	if s := o.optInt("memory_score", "memoryScore", "memoryscore"); s != nil {
		v := domain.ClampScore(*s)
		p.MemoryScore = &v
	}
	if s := o.optInt("discipline_score", "disciplineScore", "disciplinescore"); s != nil {
		v := domain.ClampScore(*s)
		p.DisciplineScore = &v
	}
	return p
}

func normalizeCourse(o object) domain.Course {
	return domain.Course{
		ID:         o.id("id", "course_id", "courseId"),
		Title:      o.str("title"),
		Level:      o.str("level"),
		Language:   o.str("language"),
		FormatType: o.str("format_type", "formatType", "formattype"),
		URL:        o.str("url", "stepik_url"),
	}
}

func normalizeCourses(raw json.RawMessage) ([]domain.Course, error) {
	items, err := decodeList(raw)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Course, 0, len(items))
	for _, item := range items {
		o, err := decodeObject(item)
		if err != nil {
			return nil, err
		}
		if o == nil {
			continue
		}
		out = append(out, normalizeCourse(o))
	}
	return out, nil
}

func normalizeStep(raw json.RawMessage) (domain.Step, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return domain.Step{Title: strings.TrimSpace(text)}, nil
	}
	o, err := decodeObject(raw)
	if err != nil {
		return domain.Step{}, err
	}
	return domain.Step{
		Title:                  o.str("title", "name"),
		Description:            o.str("description", "text"),
		RecommendedTimeMinutes: o.optInt("recommended_time", "recommended_time_minutes", "recommendedTime", "recommendedtime"),
	}, nil
}

// normalizeStrings accepts a list of strings or a single string.
func normalizeStrings(raw json.RawMessage) []string {
	if isNull(raw) {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && strings.TrimSpace(single) != "" {
		return []string{strings.TrimSpace(single)}
	}
	return []string{}
}

func normalizeStrategy(o object) (domain.Strategy, error) {
	s := domain.Strategy{
		ID:         o.id("id", "strategy_id", "strategyId"),
		Summary:    o.str("summary"),
		Pace:       o.str("pace", "recommended_pace", "recommendedPace"),
		FormatTips: []string{},
		Steps:      []domain.Step{},
		CreatedAt:  o.time("created_at", "createdAt"),
		UpdatedAt:  o.time("updated_at", "updatedAt"),
	}

	if raw, ok := o.lookup("course"); ok {
		if id, isID := parseInt(raw); isID {
			s.Course = domain.Course{ID: id}
		} else {
			co, err := decodeObject(raw)
			if err != nil {
				return domain.Strategy{}, err
			}
			s.Course = normalizeCourse(co)
		}
	} else {
		s.Course = domain.Course{ID: o.id("course_id", "courseId")}
	}

	if raw, ok := o.lookup("format_tips", "formatTips", "formattips"); ok {
		s.FormatTips = normalizeStrings(raw)
	}

	if raw, ok := o.lookup("steps"); ok {
		items, err := decodeList(raw)
		if err != nil {
			return domain.Strategy{}, err
		}
		for _, item := range items {
			step, err := normalizeStep(item)
			if err != nil {
				return domain.Strategy{}, err
			}
			s.Steps = append(s.Steps, step)
		}
	}
	return s, nil
}

func normalizeStrategies(raw json.RawMessage) ([]domain.Strategy, error) {
	items, err := decodeList(raw)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Strategy, 0, len(items))
	for _, item := range items {
		o, err := decodeObject(item)
		if err != nil {
			return nil, err
		}
		if o == nil {
			continue
		}
		s, err := normalizeStrategy(o)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// normalizeBundle keeps track of whether strategies were sent at all: an
// empty-but-present list is authoritative, an absent one is not.
func normalizeBundle(o object, userID int64) (domain.RecommendationBundle, error) {
	var b domain.RecommendationBundle

	if raw, ok := o.lookup("profile", "profile_snapshot", "profileSnapshot"); ok {
		po, err := decodeObject(raw)
		if err != nil {
			return b, err
		}
		p := normalizeProfile(po, userID)
		b.ProfileSnapshot = &p
	}

	courses := []domain.Course{}
	if raw, ok := o.lookup("courses", "recommended_courses", "recommendedCourses"); ok {
		var err error
		if courses, err = normalizeCourses(raw); err != nil {
			return b, err
		}
	}
	b.Courses = courses

	b.Strategies = []domain.Strategy{}
	if raw, ok := o.lookup("strategies"); ok {
		b.HasStrategies = true
		list, err := normalizeStrategies(raw)
		if err != nil {
			return b, err
		}
		b.Strategies = list
	}
	return b, nil
}

func normalizeQuestion(o object) domain.OnboardingQuestion {
	q := domain.OnboardingQuestion{
		ID:      o.str("id", "question_id", "questionId"),
		Section: domain.QuestionSection(strings.ToLower(o.str("section", "category", "type"))),
		Text:    o.str("text", "question", "title"),
		Options: []domain.Option{},
	}
	raw, ok := o.lookup("options", "choices")
	if !ok {
		return q
	}
	items, err := decodeList(raw)
	if err != nil {
		return q
	}
	for _, item := range items {
		var plain string
		if err := json.Unmarshal(item, &plain); err == nil {
			q.Options = append(q.Options, domain.Option{Value: plain, Label: plain})
			continue
		}
		oo, err := decodeObject(item)
		if err != nil || oo == nil {
			continue
		}
		opt := domain.Option{Value: oo.str("value", "id", "key"), Label: oo.str("label", "text", "title")}
		if opt.Label == "" {
			opt.Label = opt.Value
		}
		q.Options = append(q.Options, opt)
	}
	return q
}
