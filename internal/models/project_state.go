// ABOUTME: ProjectState is the small structured document describing a project
// ABOUTME: UploadNote rows record answers captured during file ingestion
package models

// ProjectState is the whole of project_state.json. CurrentFocus is
// situational free text; retrieval only includes it when the query
// overlaps with its content.
type ProjectState struct {
	Project      string `json:"project"`
	Phase        string `json:"phase,omitempty"`
	CurrentFocus string `json:"current_focus,omitempty"`
	UpdatedAt    string `json:"updated_at"`
}

// UploadNote is one line in upload_notes.jsonl, written on behalf of the
// external ingestion collaborator.
type UploadNote struct {
	ID         string `json:"id"`
	CreatedAt  string `json:"created_at"`
	UploadPath string `json:"upload_path,omitempty"`
	Answer     string `json:"answer"`
}

// OwnerProfile lives in the global identity area, outside any project.
// Only the delegated identity commit path may write it.
type OwnerProfile struct {
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	UpdatedAt string `json:"updated_at"`
}
