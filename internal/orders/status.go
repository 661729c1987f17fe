package orders

type Status string

// StatusNew is the only status this package writes. Later transitions belong
// to whoever fulfils the order.
const StatusNew Status = "new"
