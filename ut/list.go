package ut

// List is a doubly linked list. The zero value is an empty list.
type List[T any] struct {
	First *ListNode[T]
	Last  *ListNode[T]
	Len   int
}

// ListNode holds one list element.
type ListNode[T any] struct {
	Prev *ListNode[T]
	Next *ListNode[T]
	Data T
}

// PushBack appends data to the end of the list and returns its node.
func (l *List[T]) PushBack(data T) *ListNode[T] {
	if l == nil {
		return nil
	}
	node := &ListNode[T]{Data: data, Prev: l.Last}
	if l.Last != nil {
		l.Last.Next = node
	} else {
		l.First = node
	}
	l.Last = node
	l.Len++
	return node
}

// Remove unlinks a node from the list.
func (l *List[T]) Remove(node *ListNode[T]) {
	if l == nil || node == nil {
		return
	}
	if node.Prev != nil {
		node.Prev.Next = node.Next
	} else {
		l.First = node.Next
	}
	if node.Next != nil {
		node.Next.Prev = node.Prev
	} else {
		l.Last = node.Prev
	}
	node.Prev = nil
	node.Next = nil
	l.Len--
}

// PopFront removes and returns the first element; ok is false when empty.
func (l *List[T]) PopFront() (data T, ok bool) {
	if l == nil || l.First == nil {
		return data, false
	}
	node := l.First
	l.Remove(node)
	return node.Data, true
}

// Each visits every element in order until fn returns false.
func (l *List[T]) Each(fn func(T) bool) {
	if l == nil || fn == nil {
		return
	}
	for node := l.First; node != nil; node = node.Next {
		if !fn(node.Data) {
			return
		}
	}
}
