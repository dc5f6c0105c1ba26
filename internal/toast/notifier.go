package toast

// Publisher is the slice of the event bus a Notifier needs.
type Publisher interface {
	Publish(topic string, payload any)
}

// Notifier publishes toast messages. It holds no state besides the bus and
// is safe for concurrent use if the bus is.
type Notifier struct {
	pub Publisher
}

func NewNotifier(pub Publisher) *Notifier {
	return &Notifier{pub: pub}
}

// Send publishes {message, typ, options} on Topic exactly once.
// Neither message nor typ is validated. opts is optional; if several are
// given the first one is used.
func (n *Notifier) Send(message string, typ Type, opts ...Options) {
	if n == nil || n.pub == nil {
		return
	}
	var o Options
	if len(opts) > 0 {
		o = opts[0]
		// Detach from the caller's pointer so the published value can't change later.
		if o.Dismissible != nil {
			o.Dismissible = Bool(*o.Dismissible)
		}
	}
	n.pub.Publish(Topic, Message{Message: message, Type: typ, Options: o})
}

func (n *Notifier) Success(message string, opts ...Options) { n.Send(message, Success, opts...) }
func (n *Notifier) Warning(message string, opts ...Options) { n.Send(message, Warning, opts...) }
func (n *Notifier) Info(message string, opts ...Options)    { n.Send(message, Info, opts...) }

// Error publishes with type "danger".
func (n *Notifier) Error(message string, opts ...Options) { n.Send(message, Danger, opts...) }
