package auth

import "sync"

// AuthorizationResult is the outcome of one login attempt: either an
// authorization code or a typed failure, never both.
type AuthorizationResult struct {
	Code string
	Err  *AuthError
}

// resultDispatcher funnels a flow's outcome into the caller's callback
// pair, guaranteeing exactly-once delivery: whichever of success/failure
// reaches it first wins, everything after is dropped.
type resultDispatcher struct {
	once      sync.Once
	onCode    func(code string)
	onFailure func(err error)
}

func newResultDispatcher(onCode func(string), onFailure func(error)) *resultDispatcher {
	return &resultDispatcher{onCode: onCode, onFailure: onFailure}
}

func (d *resultDispatcher) deliver(res AuthorizationResult) {
	d.once.Do(func() {
		if res.Err != nil {
			if d.onFailure != nil {
				d.onFailure(res.Err)
			}
			return
		}
		if d.onCode != nil {
			d.onCode(res.Code)
		}
	})
}

func (d *resultDispatcher) success(code string) {
	d.deliver(AuthorizationResult{Code: code})
}

func (d *resultDispatcher) failure(err *AuthError) {
	d.deliver(AuthorizationResult{Err: err})
}
