package testserver

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
)

const dateLayout = "2006-01-02"

type sessionView struct {
	ID          int    `json:"id"`
	Personality string `json:"personality"`
	UpdatedAt   string `json:"updated_at"`
}

func (s *Server) handleListSessions(c echo.Context) error {
	s.mu.Lock()
	sorted := append([]*chatSession(nil), s.sessions...)
	s.mu.Unlock()

	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].updated.After(sorted[j].updated) })

	views := make([]sessionView, 0, len(sorted))
	for _, sess := range sorted {
		id, _ := strconv.Atoi(sess.id)
		views = append(views, sessionView{
			ID:          id,
			Personality: sess.personality,
			UpdatedAt:   sess.updated.Format(timestampLayout),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"sessions": views})
}

// SessionAction is the body of POST /api/chat/sessions.
type SessionAction struct {
	Action      string `json:"action"`
	SessionID   string `json:"session_id"`
	Personality string `json:"personality"`
}

func (s *Server) handleSessionAction(c echo.Context) error {
	var req SessionAction
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request: No JSON data provided."})
	}
	if status, fail := s.hit("session:" + req.Action); fail {
		return c.JSON(status, map[string]string{"error": "injected failure"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Action {
	case "new":
		id := s.newIDLocked()
		personality := req.Personality
		if personality == "" {
			personality = string(domain.DefaultPersonality)
		}
		s.sessions = append(s.sessions, &chatSession{id: id, personality: personality, updated: s.now()})
		s.touched = id
		n, _ := strconv.Atoi(id)
		return c.JSON(http.StatusOK, map[string]int{"session_id": n})
	case "update", "delete":
		if req.SessionID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing session_id"})
		}
		sess := s.findSession(req.SessionID)
		if sess == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Session not found"})
		}
		if req.Action == "delete" {
			for i, other := range s.sessions {
				if other == sess {
					s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
					break
				}
			}
			if s.touched == sess.id {
				s.touched = ""
			}
			return c.JSON(http.StatusOK, map[string]bool{"success": true})
		}
		if req.Personality != "" {
			sess.personality = req.Personality
		}
		sess.updated = s.now()
		s.touched = sess.id
		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid action"})
	}
}

func (s *Server) handleHistory(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.findSession(c.Param("id"))
	if sess == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Session not found"})
	}
	history := append([]domain.HistoryRecord{}, sess.history...)
	return c.JSON(http.StatusOK, map[string]interface{}{"messages": history})
}

func (s *Server) handleCreateExpense(c echo.Context) error {
	var in domain.ExpenseInput
	if err := c.Bind(&in); err != nil || in.Amount <= 0 || in.Category == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "amount and category are required"})
	}
	if in.Date == "" {
		in.Date = s.now().Format(dateLayout)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	wallet := s.walletLocked(in.WalletID)
	if wallet == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Wallet not found"})
	}
	if in.IsExpense {
		wallet.Balance -= in.Amount
	} else {
		wallet.Balance += in.Amount
	}
	id := s.newIDLocked()
	s.expenses = append(s.expenses, &expense{id: id, ExpenseInput: in})
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleUpdateExpense(c echo.Context) error {
	var fields map[string]interface{}
	if err := json.NewDecoder(c.Request().Body).Decode(&fields); err != nil || len(fields) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No fields to update"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var target *expense
	for _, e := range s.expenses {
		if e.id == c.Param("id") {
			target = e
		}
	}
	if target == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Expense not found"})
	}

	if v, ok := fields["amount"].(float64); ok {
		target.Amount = v
	}
	if v, ok := fields["category"].(string); ok {
		target.Category = v
	}
	if v, ok := fields["description"].(string); ok {
		target.Note = v
	}
	if v, ok := fields["date"].(string); ok {
		target.Date = v
	}
	if v, ok := fields["wallet_id"].(float64); ok {
		target.WalletID = int64(v)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleStatistics(c echo.Context) error {
	start, errStart := time.Parse(dateLayout, c.QueryParam("start_date"))
	end, errEnd := time.Parse(dateLayout, c.QueryParam("end_date"))
	if errStart != nil || errEnd != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "start_date and end_date are required"})
	}

	type row struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
		Count    int     `json:"count"`
	}

	s.mu.Lock()
	byCategory := make(map[string]*row)
	var order []string
	for _, e := range s.expenses {
		date, err := time.Parse(dateLayout, e.Date)
		if err != nil || !e.IsExpense || date.Before(start) || date.After(end) {
			continue
		}
		r, ok := byCategory[e.Category]
		if !ok {
			r = &row{Category: e.Category}
			byCategory[e.Category] = r
			order = append(order, e.Category)
		}
		r.Total += e.Amount
		r.Count++
	}
	s.mu.Unlock()

	rows := make([]row, 0, len(order))
	for _, cat := range order {
		rows = append(rows, *byCategory[cat])
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"by_category": rows})
}

func (s *Server) handleTrends(c echo.Context) error {
	start, err := time.Parse(dateLayout, c.QueryParam("start_date"))
	if err != nil {
		start = time.Time{}
	}

	s.mu.Lock()
	byMonth := make(map[[2]int]*domain.TrendRow)
	for _, e := range s.expenses {
		date, err := time.Parse(dateLayout, e.Date)
		if err != nil || date.Before(start) {
			continue
		}
		key := [2]int{date.Year(), int(date.Month())}
		r, ok := byMonth[key]
		if !ok {
			r = &domain.TrendRow{Year: key[0], Month: key[1]}
			byMonth[key] = r
		}
		if e.IsExpense {
			r.Expenses += e.Amount
		} else {
			r.Income += e.Amount
		}
		r.Net = r.Income - r.Expenses
	}
	s.mu.Unlock()

	rows := make([]domain.TrendRow, 0, len(byMonth))
	for _, r := range byMonth {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})
	return c.JSON(http.StatusOK, map[string]interface{}{"trends": rows})
}

func (s *Server) handleCreateBudget(c echo.Context) error {
	var in domain.BudgetInput
	if err := c.Bind(&in); err != nil || in.Amount <= 0 || in.Category == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "amount and category are required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.budgets {
		if b.Month == in.Month && b.Year == in.Year && b.Category == in.Category {
			s.budgets[i] = in
			return c.JSON(http.StatusOK, map[string]bool{"success": true})
		}
	}
	s.budgets = append(s.budgets, in)
	return c.JSON(http.StatusCreated, map[string]bool{"success": true})
}

// budgetStatusLocked computes the spending of each budget of a month.
func (s *Server) budgetStatusLocked(month, year int) []domain.BudgetStatus {
	var out []domain.BudgetStatus
	for _, b := range s.budgets {
		if b.Month != month || b.Year != year {
			continue
		}
		var spent float64
		for _, e := range s.expenses {
			date, err := time.Parse(dateLayout, e.Date)
			if err != nil || !e.IsExpense || e.Category != b.Category {
				continue
			}
			if date.Year() == year && int(date.Month()) == month {
				spent += e.Amount
			}
		}
		pct := spent / b.Amount * 100
		status := "ok"
		switch {
		case spent > b.Amount:
			status = "exceeded"
		case pct >= 80:
			status = "warning"
		}
		out = append(out, domain.BudgetStatus{
			Category:   b.Category,
			Spent:      spent,
			Amount:     b.Amount,
			Percentage: pct,
			Status:     status,
		})
	}
	return out
}

func (s *Server) handleCurrentBudgets(c echo.Context) error {
	now := s.now()
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil {
		month = int(now.Month())
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		year = now.Year()
	}

	s.mu.Lock()
	budgets := s.budgetStatusLocked(month, year)
	s.mu.Unlock()
	if budgets == nil {
		budgets = []domain.BudgetStatus{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"budgets": budgets})
}

func (s *Server) handleAlerts(c echo.Context) error {
	now := s.now()

	s.mu.Lock()
	budgets := s.budgetStatusLocked(int(now.Month()), now.Year())
	s.mu.Unlock()

	alerts := []domain.BudgetAlert{}
	for _, b := range budgets {
		if b.Percentage >= 80 {
			alerts = append(alerts, domain.BudgetAlert{
				Category:   b.Category,
				Percentage: b.Percentage,
				Spent:      b.Spent,
				Limit:      b.Amount,
				Status:     b.Status,
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"alerts": alerts})
}

func (s *Server) handleWallets(c echo.Context) error {
	s.mu.Lock()
	wallets := append([]domain.Wallet{}, s.wallets...)
	s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]interface{}{"wallets": wallets})
}

func (s *Server) handleCreateGoal(c echo.Context) error {
	var in domain.GoalInput
	if err := c.Bind(&in); err != nil || in.Name == "" || in.TargetAmount <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and target_amount are required"})
	}

	s.mu.Lock()
	s.goals = append(s.goals, in)
	id := s.newIDLocked()
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) walletLocked(id int64) *domain.Wallet {
	for i := range s.wallets {
		if s.wallets[i].ID == id {
			return &s.wallets[i]
		}
	}
	return nil
}
