package activitylog

type State struct {
	Logs       []*Entry
	Pagination Pagination
	Error      string
	Loading    bool
}

func InitialState() State {
	return State{Pagination: Pagination{Page: DefaultPage, Limit: DefaultLimit}}
}

type Action interface {
	isLogAction()
}

type (
	loadingStarted struct{}
	pageLoaded     struct {
		logs       []*Entry
		pagination Pagination
	}
	failed  struct{ msg string }
	cleared struct{}
)

func (loadingStarted) isLogAction() {}
func (pageLoaded) isLogAction()     {}
func (failed) isLogAction()         {}
func (cleared) isLogAction()        {}

func reduce(s State, action Action) State {
	switch a := action.(type) {
	case loadingStarted:
		s.Loading = true
	case pageLoaded:
		s.Logs = a.logs
		s.Pagination = a.pagination
		s.Loading = false
		s.Error = ""
	case failed:
		s.Error = a.msg
		s.Loading = false
	case cleared:
		return InitialState()
	}
	return s
}
