package server

// GetOnlineCount 获取在线人数
func (s *Server) GetOnlineCount() int {
	return s.registry.Count()
}

// GetRoomCount 获取房间数
func (s *Server) GetRoomCount() int {
	return s.roomManager.Count()
}
