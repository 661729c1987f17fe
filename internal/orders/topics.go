package orders

import "strconv"

const TopicOrderPlaced = "order.placed"

// PartitionKey keeps all events of one order on one partition.
func PartitionKey(orderID int64) []byte { return []byte(strconv.FormatInt(orderID, 10)) }
