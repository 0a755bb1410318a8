package models

// Resource type discriminators used on the wire. Each broadcastable entity
// declares exactly one; receivers rely on it to pick the matching payload
// decoder, so values are stable and never reused.
const (
	ResourceTypeCategory = "category"
	ResourceTypeUser     = "user"
	ResourceTypeProduct  = "product"
	ResourceTypeItem     = "item"
	ResourceTypeOrder    = "order"
	ResourceTypeStation  = "station"
	ResourceTypeEvent    = "event"
)

// Resource is implemented by every entity that can be carried in a change
// envelope.
type Resource interface {
	ResourceType() string
	ResourceID() string
}

func (c Category) ResourceType() string { return ResourceTypeCategory }
func (c Category) ResourceID() string   { return c.ID }

func (u User) ResourceType() string { return ResourceTypeUser }
func (u User) ResourceID() string   { return u.ID }

func (p Product) ResourceType() string { return ResourceTypeProduct }
func (p Product) ResourceID() string   { return p.ID }

func (l OrderLine) ResourceType() string { return ResourceTypeItem }
func (l OrderLine) ResourceID() string   { return l.ID }

func (o Order) ResourceType() string { return ResourceTypeOrder }
func (o Order) ResourceID() string   { return o.ID }

func (s Station) ResourceType() string { return ResourceTypeStation }
func (s Station) ResourceID() string   { return s.ID }

func (e Event) ResourceType() string { return ResourceTypeEvent }
func (e Event) ResourceID() string   { return e.ID }

// compile-time checks that the union stays closed over exactly these types
var (
	_ Resource = Category{}
	_ Resource = User{}
	_ Resource = Product{}
	_ Resource = OrderLine{}
	_ Resource = Order{}
	_ Resource = Station{}
	_ Resource = Event{}
)
