package domain

// CanMutate decides whether actor may complete or delete task.
// Holders of CapManageAnyTask bypass the ownership check.
func CanMutate(actor Actor, task *Task) bool {
	if task == nil || actor.UserID == "" {
		return false
	}
	if actor.Can(CapManageAnyTask) {
		return true
	}
	return task.OwnerID == actor.UserID
}

// Authorize returns a forbidden error naming action when CanMutate is false.
func Authorize(actor Actor, task *Task, action Action) error {
	if CanMutate(actor, task) {
		return nil
	}
	return NewForbiddenError(action)
}
