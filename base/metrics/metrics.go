package metrics

const (
	ControlCyclesTotalH   = "The total number of control cycles executed"
	ControlCyclesTotalN   = "robotnav_control_cycles_total"
	ControlCyclesSkippedH = "The total number of control cycles skipped due to missing sensor or odometry data"
	ControlCyclesSkippedN = "robotnav_control_cycles_skipped"
	ControlDistanceH      = "The current distance to the target point"
	ControlDistanceN      = "robotnav_control_distance"
	ControlVelocityXH     = "The current commanded velocity along the x axis"
	ControlVelocityXN     = "robotnav_control_velocity_x"
	ControlVelocityYH     = "The current commanded velocity along the y axis"
	ControlVelocityYN     = "robotnav_control_velocity_y"

	NavObstacleEngagedH     = "The total number of cycles governed by the obstacle avoidance rule set"
	NavObstacleEngagedN     = "robotnav_nav_obstacle_engaged"
	NavInferenceIncompleteH = "The total number of inference runs in which no rule fired for an output"
	NavInferenceIncompleteN = "robotnav_nav_inference_incomplete"

	RobotRequestsH      = "The total number of requests sent to the robot"
	RobotRequestsN      = "robotnav_robot_requests"
	RobotRequestErrorsH = "The total number of failed requests to the robot"
	RobotRequestErrorsN = "robotnav_robot_request_errors"
)
