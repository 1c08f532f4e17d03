// pkg/registry/schema.go
package registry

// TeamManifest describes the analyst team and its members.
type TeamManifest struct {
	Version     string   `json:"version"`
	LastUpdated string   `json:"lastUpdated"`
	Team        Team     `json:"team"`
	Members     []Member `json:"members"`
}

type Team struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Instructions string `json:"instructions,omitempty"`
}

// Member is one stage of the team pipeline.
type Member struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Role         string   `json:"role"`
	Instructions string   `json:"instructions,omitempty"`
	Tools        []string `json:"tools"`
	TaskType     string   `json:"taskType"`
	ErrorCodes   []string `json:"errorCodes"`
	Timeout      string   `json:"timeout"`
	Retries      int      `json:"retries"`
}

// Member roles; each role maps onto one pipeline stage.
const (
	RoleIntent   = "intent"
	RoleNL2SQL   = "nl2sql"
	RoleAnalysis = "analysis"
)

// Tool names exposed by the schema introspection and query capabilities.
const (
	ToolListTables    = "list_tables"
	ToolDescribeTable = "describe_table"
	ToolRunSQLQuery   = "run_sql_query"
)
