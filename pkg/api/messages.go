package api

// Money is a decimal amount with its ISO 4217 currency, e.g.
// {"amount":"33.34","currency":"USD"}.
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Strategy selects how a total is divided. Only the map matching Kind is read.
type Strategy struct {
	Kind string `json:"kind"`

	// Percentages maps participant ID to a decimal percent ("33.33").
	Percentages map[string]string `json:"percentages,omitempty"`

	// Shares maps participant ID to a whole number of shares.
	Shares map[string]int64 `json:"shares,omitempty"`

	// Adjustments maps participant ID to a signed decimal amount in the
	// total's currency ("-5.00").
	Adjustments map[string]string `json:"adjustments,omitempty"`
}

type Share struct {
	ParticipantID string `json:"participant_id"`
	Amount        Money  `json:"amount"`
}

type SplitResult struct {
	Kind       string  `json:"kind"`
	Total      Money   `json:"total"`
	Shares     []Share `json:"shares"`
	Reconciled bool    `json:"reconciled"`
}

// SplitService

type ComputeSplitRequest struct {
	Total        Money         `json:"total"`
	Participants []Participant `json:"participants"`
	Strategy     Strategy      `json:"strategy"`
}

type ComputeSplitResponse struct {
	Result SplitResult `json:"result"`

	// Status is VALID, VALID_WITH_ROUNDING or UNRECONCILED.
	Status string `json:"status"`
}

type ValidateSplitRequest struct {
	Total  Money       `json:"total"`
	Result SplitResult `json:"result"`
}

type ValidateSplitResponse struct {
	Status string `json:"status"`
}

type FreshStrategyRequest struct {
	Kind         string        `json:"kind"`
	Participants []Participant `json:"participants"`
}

type FreshStrategyResponse struct {
	Strategy Strategy `json:"strategy"`
}

type RebalancePercentagesRequest struct {
	Participants []Participant     `json:"participants"`
	Percentages  map[string]string `json:"percentages"`

	// Touched lists the participants whose percentage the user entered.
	Touched []string `json:"touched"`
}

type RebalancePercentagesResponse struct {
	Percentages map[string]string `json:"percentages"`
}

// GroupService

type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Currency  string   `json:"currency"`
	Members   []Member `json:"members"`
	CreatedBy string   `json:"created_by,omitempty"`
	CreatedAt int64    `json:"created_at"`
}

type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []Member `json:"members"`

	// Currency defaults to the server's configured currency.
	Currency string `json:"currency,omitempty"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type UpdateGroupRequest struct {
	GroupID string   `json:"group_id"`
	Name    string   `json:"name"`
	Members []Member `json:"members"`
}

type UpdateGroupResponse struct {
	Group Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type MemberBalance struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`

	// Net is positive when the member is owed money.
	Net  Money `json:"net"`
	Paid Money `json:"paid"`
	Owed Money `json:"owed"`
}

type Debt struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount Money  `json:"amount"`
}

type GetGroupBalancesResponse struct {
	Currency string          `json:"currency"`
	Balances []MemberBalance `json:"balances"`
	Debts    []Debt          `json:"debts"`
}

// ExpenseService

type Expense struct {
	ID          string   `json:"id"`
	GroupID     string   `json:"group_id"`
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	PayerID     string   `json:"payer_id"`
	Total       Money    `json:"total"`
	Strategy    Strategy `json:"strategy"`
	Shares      []Share  `json:"shares"`
	CreatedBy   string   `json:"created_by,omitempty"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
}

type CreateExpenseRequest struct {
	GroupID     string   `json:"group_id"`
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	PayerID     string   `json:"payer_id"`
	Total       Money    `json:"total"`
	Strategy    Strategy `json:"strategy"`

	// ParticipantIDs defaults to every group member, in group order.
	ParticipantIDs []string `json:"participant_ids,omitempty"`
}

type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
	Status  string  `json:"status"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"group_id"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type UpdateExpenseRequest struct {
	ExpenseID      string   `json:"expense_id"`
	Description    string   `json:"description"`
	Category       string   `json:"category,omitempty"`
	PayerID        string   `json:"payer_id"`
	Total          Money    `json:"total"`
	ParticipantIDs []string `json:"participant_ids,omitempty"`
	Strategy       Strategy `json:"strategy"`
}

type UpdateExpenseResponse struct {
	Expense Expense `json:"expense"`
	Status  string  `json:"status"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

// SettlementService

type Settlement struct {
	ID        string `json:"id"`
	GroupID   string `json:"group_id"`
	FromID    string `json:"from_id"`
	ToID      string `json:"to_id"`
	Amount    Money  `json:"amount"`
	Note      string `json:"note,omitempty"`
	CreatedBy string `json:"created_by,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type CreateSettlementRequest struct {
	GroupID string `json:"group_id"`
	FromID  string `json:"from_id"`
	ToID    string `json:"to_id"`
	Amount  Money  `json:"amount"`
	Note    string `json:"note,omitempty"`
}

type CreateSettlementResponse struct {
	Settlement Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"group_id"`
}

type ListSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlement_id"`
}

type DeleteSettlementResponse struct{}

// AuthService

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at,omitempty"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}
