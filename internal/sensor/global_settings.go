package sensor

// globalSettings is the baseline register table written at every stream start,
// before clock, format and mode configuration. Addresses not named in
// registers.go are undocumented analog tuning values.
var globalSettings = Program{
	{RegMasterStop, 0x00},
	{0x301A, 0x00},
	{0x301B, 0x00},
	{0x301C, 0x00},
	{0x301E, 0x01},
	{0x3024, 0x00}, // HDR COMBI_EN
	{0x303C, 0x00}, // HSTART
	{0x303D, 0x00}, // HSTART
	{0x303E, 0x10}, // HWIDTH
	{0x303F, 0x0F}, // HWIDTH
	{RegLaneMode, LaneMode2},
	{0x3042, 0x00},
	{0x3043, 0x00},
	{0x3044, 0x00}, // VSTART
	{0x3045, 0x00}, // VSTART
	{0x3046, 0x84}, // VWIDTH
	{0x3047, 0x08}, // VWIDTH
	{0x3054, 0x0E}, // SHR1
	{0x3055, 0x00}, // SHR1
	{0x3056, 0x00}, // SHR1
	{0x3058, 0x8A}, // SHR2
	{0x3059, 0x01}, // SHR2
	{0x305A, 0x00}, // SHR2
	{0x3060, 0x16}, // RHS1
	{0x3061, 0x01}, // RHS1
	{0x3062, 0x00}, // RHS1
	{0x3064, 0xC4}, // RHS2
	{0x3065, 0x0C}, // RHS2
	{0x3066, 0x00}, // RHS2
	{0x3069, 0x00},
	{0x306A, 0x00},
	{0x306E, 0x00}, // GAIN1
	{0x306F, 0x00}, // GAIN1
	{0x3070, 0x00}, // GAIN2
	{0x3071, 0x00}, // GAIN2
	{0x3074, 0x64},
	{0x3081, 0x00},
	{0x308C, 0x00},
	{0x308D, 0x01},
	{0x3094, 0x00},
	{0x3095, 0x00},
	{0x3096, 0x00},
	{0x3097, 0x00},
	{0x309C, 0x00},
	{0x309D, 0x00},
	{0x30A4, 0xAA}, // XVSOUT/XHSOUT
	{0x30A6, 0x00}, // XVSDRIVE/XHSDRIVE
	{0x30CC, 0x00}, // HVS LENGTH
	{0x30CD, 0x00}, // XHS LENGTH
	{0x30D5, 0x04}, // DIG_CLP_VSTART
	{0x30DC, 0x32}, // Black Level
	{0x30DD, 0x00}, // Black Level
	{0x3400, 0x01},
	{0x3460, 0x21},
	{0x3478, 0xA1},
	{0x347C, 0x01},
	{0x3480, 0x01},
	{0x36D0, 0x00},
	{0x36D1, 0x10},
	{0x36D4, 0x00},
	{0x36D5, 0x10},
	{0x36E2, 0x00},
	{0x36E4, 0x00},
	{0x36E5, 0x00},
	{0x36E6, 0x00},
	{0x36E8, 0x00},
	{0x36E9, 0x00},
	{0x36EA, 0x00},
	{0x36EC, 0x00},
	{0x36EE, 0x00},
	{0x36EF, 0x00},
	{0x3930, 0x66},
	{0x3931, 0x01},
	{0x3A4C, 0x39},
	{0x3A4D, 0x01},
	{0x3A4E, 0x14},
	{0x3A50, 0x48},
	{0x3A51, 0x01},
	{0x3A52, 0x14},
	{0x3A56, 0x00},
	{0x3A5A, 0x00},
	{0x3A5E, 0x00},
	{0x3A62, 0x00},
	{0x3A6A, 0x20},
	{0x3A6C, 0x42},
	{0x3A6E, 0xA0},
	{0x3B2C, 0x0C},
	{0x3B30, 0x1C},
	{0x3B34, 0x0C},
	{0x3B38, 0x1C},
	{0x3BA0, 0x0C},
	{0x3BA4, 0x1C},
	{0x3BA8, 0x0C},
	{0x3BAC, 0x1C},
	{0x3D3C, 0x11},
	{0x3D46, 0x0B},
	{0x3DE0, 0x3F},
	{0x3DE1, 0x08},
	{0x3E10, 0x10},
	{0x3E14, 0x87},
	{0x3E16, 0x91},
	{0x3E18, 0x91},
	{0x3E1A, 0x87},
	{0x3E1C, 0x78},
	{0x3E1E, 0x50},
	{0x3E20, 0x50},
	{0x3E22, 0x50},
	{0x3E24, 0x87},
	{0x3E26, 0x91},
	{0x3E28, 0x91},
	{0x3E2A, 0x87},
	{0x3E2C, 0x78},
	{0x3E2E, 0x50},
	{0x3E30, 0x50},
	{0x3E32, 0x50},
	{0x3E34, 0x87},
	{0x3E36, 0x91},
	{0x3E38, 0x91},
	{0x3E3A, 0x87},
	{0x3E3C, 0x78},
	{0x3E3E, 0x50},
	{0x3E40, 0x50},
	{0x3E42, 0x50},
	{0x4054, 0x64},
	{0x4148, 0xFE},
	{0x4149, 0x05},
	{0x414A, 0xFF},
	{0x414B, 0x05},
	{0x420A, 0x03},
	{0x4231, 0x18},
	{0x423D, 0x9C},
	{0x4242, 0xB4},
	{0x4246, 0xB4},
	{0x424E, 0xB4},
	{0x425C, 0xB4},
	{0x425E, 0xB6},
	{0x426C, 0xB4},
	{0x426E, 0xB6},
	{0x428C, 0xB4},
	{0x428E, 0xB6},
	{0x4708, 0x00},
	{0x4709, 0x00},
	{0x470A, 0xFF},
	{0x470B, 0x03},
	{0x470C, 0x00},
	{0x470D, 0x00},
	{0x470E, 0xFF},
	{0x470F, 0x03},
	{0x47EB, 0x1C},
	{0x47F0, 0xA6},
	{0x47F2, 0xA6},
	{0x47F4, 0xA0},
	{0x47F6, 0x96},
	{0x4808, 0xA6},
	{0x480A, 0xA6},
	{0x480C, 0xA0},
	{0x480E, 0x96},
	{0x492C, 0xB2},
	{0x4930, 0x03},
	{0x4932, 0x03},
	{0x4936, 0x5B},
	{0x4938, 0x82},
	{0x493C, 0x23},
	{0x493E, 0x23},
	{0x4940, 0x23},
	{0x4BA8, 0x1C},
	{0x4BA9, 0x03},
	{0x4BAC, 0x1C},
	{0x4BAD, 0x1C},
	{0x4BAE, 0x1C},
	{0x4BAF, 0x1C},
	{0x4BB0, 0x1C},
	{0x4BB1, 0x1C},
	{0x4BB2, 0x1C},
	{0x4BB3, 0x1C},
	{0x4BB4, 0x1C},
	{0x4BB8, 0x03},
	{0x4BB9, 0x03},
	{0x4BBA, 0x03},
	{0x4BBB, 0x03},
	{0x4BBC, 0x03},
	{0x4BBD, 0x03},
	{0x4BBE, 0x03},
	{0x4BBF, 0x03},
	{0x4BC0, 0x03},
	{0x4C14, 0x87},
	{0x4C16, 0x91},
	{0x4C18, 0x91},
	{0x4C1A, 0x87},
	{0x4C1C, 0x78},
	{0x4C1E, 0x50},
	{0x4C20, 0x50},
	{0x4C22, 0x50},
	{0x4C24, 0x87},
	{0x4C26, 0x91},
	{0x4C28, 0x91},
	{0x4C2A, 0x87},
	{0x4C2C, 0x78},
	{0x4C2E, 0x50},
	{0x4C30, 0x50},
	{0x4C32, 0x50},
	{0x4C34, 0x87},
	{0x4C36, 0x91},
	{0x4C38, 0x91},
	{0x4C3A, 0x87},
	{0x4C3C, 0x78},
	{0x4C3E, 0x50},
	{0x4C40, 0x50},
	{0x4C42, 0x50},
	{0x4D12, 0x1F},
	{0x4D13, 0x1E},
	{0x4D26, 0x33},
	{0x4E0E, 0x59},
	{0x4E14, 0x55},
	{0x4E16, 0x59},
	{0x4E1E, 0x3B},
	{0x4E20, 0x47},
	{0x4E22, 0x54},
	{0x4E26, 0x81},
	{0x4E2C, 0x7D},
	{0x4E2E, 0x81},
	{0x4E36, 0x63},
	{0x4E38, 0x6F},
	{0x4E3A, 0x7C},
	{0x4F3A, 0x3C},
	{0x4F3C, 0x46},
	{0x4F3E, 0x59},
	{0x4F42, 0x64},
	{0x4F44, 0x6E},
	{0x4F46, 0x81},
	{0x4F4A, 0x82},
	{0x4F5A, 0x81},
	{0x4F62, 0xAA},
	{0x4F72, 0xA9},
	{0x4F78, 0x36},
	{0x4F7A, 0x41},
	{0x4F7C, 0x61},
	{0x4F7D, 0x01},
	{0x4F7E, 0x7C},
	{0x4F7F, 0x01},
	{0x4F80, 0x77},
	{0x4F82, 0x7B},
	{0x4F88, 0x37},
	{0x4F8A, 0x40},
	{0x4F8C, 0x62},
	{0x4F8D, 0x01},
	{0x4F8E, 0x76},
	{0x4F8F, 0x01},
	{0x4F90, 0x5E},
	{0x4F91, 0x02},
	{0x4F92, 0x69},
	{0x4F93, 0x02},
	{0x4F94, 0x89},
	{0x4F95, 0x02},
	{0x4F96, 0xA4},
	{0x4F97, 0x02},
	{0x4F98, 0x9F},
	{0x4F99, 0x02},
	{0x4F9A, 0xA3},
	{0x4F9B, 0x02},
	{0x4FA0, 0x5F},
	{0x4FA1, 0x02},
	{0x4FA2, 0x68},
	{0x4FA3, 0x02},
	{0x4FA4, 0x8A},
	{0x4FA5, 0x02},
	{0x4FA6, 0x9E},
	{0x4FA7, 0x02},
	{0x519E, 0x79},
	{0x51A6, 0xA1},
	{0x51F0, 0xAC},
	{0x51F2, 0xAA},
	{0x51F4, 0xA5},
	{0x51F6, 0xA0},
	{0x5200, 0x9B},
	{0x5202, 0x91},
	{0x5204, 0x87},
	{0x5206, 0x82},
	{0x5208, 0xAC},
	{0x520A, 0xAA},
	{0x520C, 0xA5},
	{0x520E, 0xA0},
	{0x5210, 0x9B},
	{0x5212, 0x91},
	{0x5214, 0x87},
	{0x5216, 0x82},
	{0x5218, 0xAC},
	{0x521A, 0xAA},
	{0x521C, 0xA5},
	{0x521E, 0xA0},
	{0x5220, 0x9B},
	{0x5222, 0x91},
	{0x5224, 0x87},
	{0x5226, 0x82},
}
