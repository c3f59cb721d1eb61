package auth

type State struct {
	Token string
	// IsAuthenticated is nil until the first identity check settles.
	IsAuthenticated *bool
	Loading         bool
	User            *User
	Error           string
}

func InitialState(token string) State {
	return State{Token: token, Loading: true}
}

// Authenticated reports a settled, positive identity check.
func (s State) Authenticated() bool {
	return s.IsAuthenticated != nil && *s.IsAuthenticated
}

// Settled reports whether the identity check has finished.
func (s State) Settled() bool {
	return s.IsAuthenticated != nil
}

type Action interface {
	isAuthAction()
}

type (
	loadingStarted struct{}
	userLoaded     struct{ user *User }
	checkFailed    struct{}
	tokenIssued    struct{ token string }
	userUpdated    struct{ user *User }
	failed         struct{ msg string }
	loggedOut      struct{}
	errorsCleared  struct{}
)

func (loadingStarted) isAuthAction() {}
func (userLoaded) isAuthAction()     {}
func (checkFailed) isAuthAction()    {}
func (tokenIssued) isAuthAction()    {}
func (userUpdated) isAuthAction()    {}
func (failed) isAuthAction()         {}
func (loggedOut) isAuthAction()      {}
func (errorsCleared) isAuthAction()  {}

func flag(b bool) *bool {
	return &b
}

func reduce(s State, action Action) State {
	switch a := action.(type) {
	case loadingStarted:
		s.Loading = true
	case userLoaded:
		s.User = a.user
		s.IsAuthenticated = flag(true)
		s.Loading = false
	case checkFailed, loggedOut:
		s.Token = ""
		s.User = nil
		s.IsAuthenticated = flag(false)
		s.Loading = false
	case tokenIssued:
		s.Token = a.token
		s.IsAuthenticated = flag(true)
		s.Loading = false
	case userUpdated:
		s.User = a.user
		s.Loading = false
	case failed:
		s.Error = a.msg
		s.Loading = false
	case errorsCleared:
		s.Error = ""
	}
	return s
}
