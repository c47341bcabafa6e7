package authz

import "github.com/amirhosseinghanipour/atelier/internal/domain"

// Action is an entity-scoped action class checked against the role tables.
type Action string

const (
	ReadWorkspace          Action = "workspace.read"
	UpdateWorkspace        Action = "workspace.update"
	DeleteWorkspace        Action = "workspace.delete"
	ManageWorkspaceMembers Action = "workspace.members.manage"

	ReadProject          Action = "project.read"
	CreateProject        Action = "project.create"
	UpdateProject        Action = "project.update"
	DeleteProject        Action = "project.delete"
	ManageProjectMembers Action = "project.members.manage"

	ReadTasks        Action = "task.read"
	CreateTask       Action = "task.create"
	UpdateTask       Action = "task.update"
	DeleteTask       Action = "task.delete"
	UpdateTaskStatus Action = "task.status.update"
)

// Roles is the membership state of the acting user relative to the target
// entity. Zero values mean no membership at that level.
type Roles struct {
	WorkspaceRole    domain.WorkspaceRole
	HasWorkspaceRole bool
	ProjectRole      domain.ProjectRole
	HasProjectRole   bool
	// ActorAssigned is whether the actor is among the target task's
	// assignees; only consulted for task update actions.
	ActorAssigned bool
}

// Allowed is the pure decision table combining workspace role and project
// role per action class, first satisfied rule wins. Callers handle the
// global preconditions (banned, admin-flagged operations) before this.
func Allowed(action Action, r Roles) bool {
	if !r.HasWorkspaceRole {
		// Every entity action requires at least workspace membership.
		return false
	}
	ws := r.WorkspaceRole
	switch action {
	case ReadWorkspace:
		return true
	case UpdateWorkspace, DeleteWorkspace, ManageWorkspaceMembers:
		return ws == domain.RoleOwner
	case ReadProject, ReadTasks:
		// Workspace OWNER/MEMBER read freely; a VIEWER must additionally
		// hold some project membership.
		if ws != domain.RoleViewer {
			return true
		}
		return r.HasProjectRole
	case CreateProject:
		return ws == domain.RoleOwner || ws == domain.RoleMember
	case UpdateProject:
		if ws == domain.RoleOwner || ws == domain.RoleMember {
			return true
		}
		return r.HasProjectRole && r.ProjectRole == domain.RoleProjectLead
	case DeleteProject, ManageProjectMembers, DeleteTask:
		if ws == domain.RoleOwner {
			return true
		}
		return r.HasProjectRole && r.ProjectRole == domain.RoleProjectLead
	case CreateTask:
		if ws == domain.RoleOwner || ws == domain.RoleMember {
			return true
		}
		return r.HasProjectRole &&
			(r.ProjectRole == domain.RoleProjectLead || r.ProjectRole == domain.RoleContributor)
	case UpdateTask, UpdateTaskStatus:
		if ws == domain.RoleOwner || ws == domain.RoleMember {
			return true
		}
		if !r.HasProjectRole {
			return false
		}
		if r.ProjectRole == domain.RoleProjectLead {
			return true
		}
		return r.ProjectRole == domain.RoleContributor && r.ActorAssigned
	}
	return false
}
